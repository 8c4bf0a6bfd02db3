package redisstore

import (
	"context"
	"errors"
	"time"

	"bot-for-order/internal/domain/hold"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	reservePrefix      = "{reserve}:"
	reserveOrderPrefix = "{reserve}:order:"
)

var putReserveScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
  redis.call('SET', KEYS[2], ARGV[3], 'PX', ARGV[2])
  return 1
end
return 0
`)

// Same derived-key layout as extendReserveScript.
var deleteReserveScript = redis.NewScript(`
local key = redis.call('GET', KEYS[1])
if key then
  local rk = ARGV[1] .. key
  local cur = redis.call('GET', rk)
  if cur and cjson.decode(cur).order_id == ARGV[2] then
    redis.call('DEL', rk)
  end
  redis.call('DEL', KEYS[1])
end
return 1
`)

// KEYS[1] is the order index. The reserve key is rebuilt from its value and is
// not declared; both carry the {reserve} tag so they share a slot.
var extendReserveScript = redis.NewScript(`
local key = redis.call('GET', KEYS[1])
if not key then
  return 0
end
local rk = ARGV[1] .. key
local cur = redis.call('GET', rk)
if not cur or cjson.decode(cur).order_id ~= ARGV[2] then
  return 0
end
redis.call('PEXPIRE', rk, ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// ReserveStore keeps one reservation per key plus an order index, written together.
type ReserveStore struct {
	client redis.UniversalClient
}

func NewReserveStore(client redis.UniversalClient) *ReserveStore {
	return &ReserveStore{client: client}
}

func (s *ReserveStore) PutIfAbsent(ctx context.Context, key string, payload hold.Reserve, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	ttlMs := hold.ClampTTL(ttl).Milliseconds()

	n, err := putReserveScript.Run(ctx, s.client,
		[]string{reservePrefix + key, reserveOrderPrefix + payload.OrderID},
		string(raw), ttlMs, key,
	).Int()
	if err != nil {
		return false, storeErr(err, "failed to put reserve")
	}
	return n == 1, nil
}

func (s *ReserveStore) HasOrderReserve(ctx context.Context, orderID string) (bool, error) {
	key, err := s.client.Get(ctx, reserveOrderPrefix+orderID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, storeErr(err, "failed to read reserve index")
	}

	raw, err := s.client.Get(ctx, reservePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, storeErr(err, "failed to read reserve")
	}

	var cur hold.Reserve
	if err := json.Unmarshal(raw, &cur); err != nil {
		return false, err
	}
	return cur.OrderID == orderID, nil
}

func (s *ReserveStore) ExtendByOrder(ctx context.Context, orderID string, ttl time.Duration) error {
	err := extendReserveScript.Run(ctx, s.client,
		[]string{reserveOrderPrefix + orderID},
		reservePrefix, orderID, hold.ClampTTL(ttl).Milliseconds(),
	).Err()
	if err != nil {
		return storeErr(err, "failed to extend reserve")
	}
	return nil
}

func (s *ReserveStore) DeleteReserveByOrder(ctx context.Context, orderID string) error {
	err := deleteReserveScript.Run(ctx, s.client, []string{reserveOrderPrefix + orderID}, reservePrefix, orderID).Err()
	if err != nil {
		return storeErr(err, "failed to delete reserve")
	}
	return nil
}
