package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupPrefix = "dedup:"

type DedupStore struct {
	client redis.UniversalClient
}

func NewDedupStore(client redis.UniversalClient) *DedupStore {
	return &DedupStore{client: client}
}

func (s *DedupStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, dedupPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr(err, "failed to read dedup entry")
	}
	return v, true, nil
}

func (s *DedupStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, dedupPrefix+key, value, ttl).Err(); err != nil {
		return storeErr(err, "failed to write dedup entry")
	}
	return nil
}
