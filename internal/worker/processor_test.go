//go:build unit

package worker_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/worker"
	"bot-for-order/tests/common/builder"
	sharedmock "bot-for-order/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testType = "test.event"

type ProcessorTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	repo      *sharedmock.MockOutboxRepository
	clock     *clock.MockClock
	cfg       config.OutboxConfig
	processor *worker.Processor
}

func (s *ProcessorTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.repo = sharedmock.NewMockOutboxRepository(s.mockCtrl)
	s.clock = clock.NewMockClock(builder.DefaultNow)
	s.cfg = config.NewTestConfig().Outbox
	s.processor = worker.NewProcessor(s.repo, s.clock, s.cfg)
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func message(msgType string, attempts int) *outbox.Message {
	return &outbox.Message{
		ID:            uuid.New(),
		Type:          msgType,
		Payload:       []byte(`{}`),
		Status:        outbox.StatusProcessing,
		Attempts:      attempts,
		NextAttemptAt: builder.DefaultNow,
		CreatedAt:     builder.DefaultNow,
		UpdatedAt:     builder.DefaultNow,
	}
}

func (s *ProcessorTestSuite) register(fn func(ctx context.Context, msg *outbox.Message) error) {
	s.processor.Register(testType, worker.HandlerFunc(fn))
}

func (s *ProcessorTestSuite) fetch(msgs ...*outbox.Message) {
	leaseUntil := builder.DefaultNow.Add(s.cfg.ProcessingTTL)
	s.repo.EXPECT().FetchDueBatch(gomock.Any(), s.cfg.BatchSize, builder.DefaultNow, leaseUntil).Return(msgs, nil)
}

// ================================================================================
// RunOnce
// ================================================================================

func (s *ProcessorTestSuite) TestRunOnce_Delivery() {
	ctx := context.Background()

	s.Run("success: handled message is marked done", func() {
		msg := message(testType, 1)
		var seen atomic.Int32
		s.register(func(_ context.Context, m *outbox.Message) error {
			s.Equal(msg.ID, m.ID)
			seen.Add(1)
			return nil
		})
		s.fetch(msg)
		s.repo.EXPECT().MarkDone(gomock.Any(), msg.ID, 1, builder.DefaultNow).Return(true, nil)

		n, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
		s.Equal(1, n)
		s.Equal(int32(1), seen.Load())
	})

	s.Run("success: stale finalize after a lost lease is ignored", func() {
		msg := message(testType, 2)
		s.register(func(context.Context, *outbox.Message) error { return nil })
		s.fetch(msg)
		s.repo.EXPECT().MarkDone(gomock.Any(), msg.ID, 2, gomock.Any()).Return(false, nil)

		n, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("success: whole batch is processed", func() {
		msgs := []*outbox.Message{message(testType, 1), message(testType, 1), message(testType, 1)}
		var seen atomic.Int32
		s.register(func(context.Context, *outbox.Message) error {
			seen.Add(1)
			return nil
		})
		s.fetch(msgs...)
		s.repo.EXPECT().MarkDone(gomock.Any(), gomock.Any(), 1, gomock.Any()).Return(true, nil).Times(3)

		n, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
		s.Equal(3, n)
		s.Equal(int32(3), seen.Load())
	})

	s.Run("error: fetch failure is returned", func() {
		s.repo.EXPECT().FetchDueBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		n, err := s.processor.RunOnce(ctx)
		s.Error(err)
		s.Zero(n)
	})
}

func (s *ProcessorTestSuite) TestRunOnce_Failures() {
	ctx := context.Background()

	s.Run("error: unknown type fails without retry", func() {
		msg := message("unknown.event", 1)
		s.fetch(msg)
		s.repo.EXPECT().MarkFailed(gomock.Any(), msg.ID, 1, "no handler for unknown.event", gomock.Any()).Return(true, nil)

		_, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
	})

	s.Run("error: failed handler is rescheduled with backoff", func() {
		msg := message(testType, 1)
		s.register(func(context.Context, *outbox.Message) error { return errors.New("chat unreachable") })
		s.fetch(msg)
		s.repo.EXPECT().Reschedule(gomock.Any(), msg.ID, 1, gomock.Any(), "chat unreachable").
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ int, next time.Time, _ string) (bool, error) {
				delay := next.Sub(builder.DefaultNow)
				base := s.cfg.BaseBackoff
				s.GreaterOrEqual(delay, base-time.Duration(float64(base)*outbox.JitterRatio))
				s.LessOrEqual(delay, base+time.Duration(float64(base)*outbox.JitterRatio))
				return true, nil
			})

		_, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
	})

	s.Run("error: last attempt marks the message failed", func() {
		msg := message(testType, s.cfg.MaxAttempts)
		s.register(func(context.Context, *outbox.Message) error { return errors.New("still down") })
		s.fetch(msg)
		s.repo.EXPECT().MarkFailed(gomock.Any(), msg.ID, s.cfg.MaxAttempts, "still down", gomock.Any()).Return(true, nil)

		_, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
	})

	s.Run("error: handler panic is treated as a failure", func() {
		msg := message(testType, 1)
		s.register(func(context.Context, *outbox.Message) error { panic("nil chat") })
		s.fetch(msg)
		s.repo.EXPECT().Reschedule(gomock.Any(), msg.ID, 1, gomock.Any(), "handler panic: nil chat").Return(true, nil)

		_, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
	})

	s.Run("error: long errors are truncated", func() {
		msg := message(testType, 1)
		s.register(func(context.Context, *outbox.Message) error { return errors.New(strings.Repeat("e", 5000)) })
		s.fetch(msg)
		s.repo.EXPECT().Reschedule(gomock.Any(), msg.ID, 1, gomock.Any(), strings.Repeat("e", 1000)).Return(true, nil)

		_, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
	})

	s.Run("error: handler context ends with the lease", func() {
		msg := message(testType, 1)
		s.register(func(ctx context.Context, _ *outbox.Message) error {
			deadline, ok := ctx.Deadline()
			s.True(ok)
			s.Equal(builder.DefaultNow.Add(s.cfg.ProcessingTTL), deadline)
			return nil
		})
		s.fetch(msg)
		s.repo.EXPECT().MarkDone(gomock.Any(), msg.ID, 1, gomock.Any()).Return(true, nil)

		_, err := s.processor.RunOnce(ctx)
		s.Require().NoError(err)
	})
}

// ================================================================================
// Run
// ================================================================================

func (s *ProcessorTestSuite) TestRun_StopsOnCancel() {
	s.repo.EXPECT().FetchDueBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	s.repo.EXPECT().CountBacklog(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.processor.Run(ctx)
		close(done)
	}()

	time.Sleep(3 * s.cfg.PollInterval)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("processor did not stop")
	}
}
