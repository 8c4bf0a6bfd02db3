package commands

import (
	"context"
	"log/slog"
	"time"

	"bot-for-order/internal/domain/idempotency"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/shared"
)

// IdempotencyService runs an operation at most once per key and replays the
// stored successful response afterwards.
type IdempotencyService interface {
	Execute(ctx context.Context, key idempotency.Key, requestHash string, fn func(ctx context.Context) (idempotency.Response, error)) (*idempotency.Outcome, error)
}

type idempotencyServiceImpl struct {
	repo  shared.IdempotencyRepository
	clock clock.Clock
	ttl   time.Duration
}

func NewIdempotencyService(repo shared.IdempotencyRepository, clk clock.Clock, cfg config.Config) IdempotencyService {
	return &idempotencyServiceImpl{repo: repo, clock: clk, ttl: cfg.Idempotency.TTL}
}

func (s *idempotencyServiceImpl) Execute(
	ctx context.Context,
	key idempotency.Key,
	requestHash string,
	fn func(ctx context.Context) (idempotency.Response, error),
) (*idempotency.Outcome, error) {
	now := s.clock.Now()

	existing, err := s.repo.FindValid(ctx, key, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return resolveExisting(existing, requestHash)
	}

	rec := &idempotency.Record{
		Key:         key,
		RequestHash: requestHash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	inserted, err := s.repo.TryInsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !inserted {
		outcome, err := s.afterLostInsert(ctx, rec)
		if outcome != nil || err != nil {
			return outcome, err
		}
	}

	return s.run(ctx, key, fn)
}

// afterLostInsert handles a failed insert: a concurrent request won, or a stale
// expired row is in the way. A nil outcome and nil error means the key is ours.
func (s *idempotencyServiceImpl) afterLostInsert(ctx context.Context, rec *idempotency.Record) (*idempotency.Outcome, error) {
	now := s.clock.Now()
	existing, err := s.repo.FindValid(ctx, rec.Key, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return resolveExisting(existing, rec.RequestHash)
	}

	deleted, err := s.repo.DeleteIfExpired(ctx, rec.Key, now)
	if err != nil {
		return nil, err
	}
	if deleted {
		inserted, err := s.repo.TryInsert(ctx, rec)
		if err != nil {
			return nil, err
		}
		if inserted {
			return nil, nil
		}
	}
	return nil, errs.Wrapf(errs.ErrIdempotencyInProgress, "key %s", rec.Key)
}

func (s *idempotencyServiceImpl) run(ctx context.Context, key idempotency.Key, fn func(ctx context.Context) (idempotency.Response, error)) (*idempotency.Outcome, error) {
	completed := false
	defer func() {
		if completed {
			return
		}
		s.deletePlaceholder(ctx, key)
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	resp, err := fn(ctx)
	if err != nil || !resp.IsSuccess() {
		return &idempotency.Outcome{Kind: idempotency.Executed, Response: resp}, err
	}
	completed = true

	if perr := s.repo.UpdateResponse(context.WithoutCancel(ctx), key, resp); perr != nil {
		slog.Error("failed to persist idempotent response", "key", key.String(), "error", perr.Error())
		s.deletePlaceholder(ctx, key)
	}
	return &idempotency.Outcome{Kind: idempotency.Executed, Response: resp}, nil
}

func (s *idempotencyServiceImpl) deletePlaceholder(ctx context.Context, key idempotency.Key) {
	if err := s.repo.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("failed to delete idempotency placeholder", "key", key.String(), "error", err.Error())
	}
}

func resolveExisting(rec *idempotency.Record, requestHash string) (*idempotency.Outcome, error) {
	if rec.RequestHash != requestHash {
		return nil, errs.Wrapf(errs.ErrIdempotencyKeyConflict, "key %s", rec.Key)
	}
	if !rec.IsCompleted() {
		return nil, errs.Wrapf(errs.ErrIdempotencyInProgress, "key %s", rec.Key)
	}
	return &idempotency.Outcome{
		Kind:     idempotency.Replay,
		Response: idempotency.Response{Status: *rec.ResponseStatus, Body: rec.ResponseBody},
	}, nil
}
