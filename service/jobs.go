package service

import (
	"context"
	"sync"
	"time"

	"github.com/smartbuspass/backend/logging/logger"
)

// Jobs owns the periodic maintenance work: the expired-session sweep
// and the pass-expiry flip. Both run immediately on start and then on
// their configured intervals until the context is cancelled.
type Jobs struct {
	sessions *SessionService
	verify   *VerifyService
	logger   *logger.Logger

	sweepInterval  time.Duration
	expireInterval time.Duration

	wg sync.WaitGroup
}

func NewJobs(sessions *SessionService, verify *VerifyService, sweepInterval, expireInterval time.Duration, log *logger.Logger) *Jobs {
	return &Jobs{
		sessions:       sessions,
		verify:         verify,
		logger:         log,
		sweepInterval:  sweepInterval,
		expireInterval: expireInterval,
	}
}

// Start launches the background loops. Call Wait after cancelling the
// context to let the loops drain.
func (j *Jobs) Start(ctx context.Context) {
	j.run(ctx, "session sweep", j.sweepInterval, j.sweepOnce)
	j.run(ctx, "pass expiry", j.expireInterval, j.expireOnce)
}

// Wait blocks until all loops have exited.
func (j *Jobs) Wait() {
	j.wg.Wait()
}

func (j *Jobs) run(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		j.logger.Warn(ctx, "background job disabled", "job", name)
		return
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		fn(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				j.logger.Info(ctx, "background job stopped", "job", name)
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

func (j *Jobs) sweepOnce(ctx context.Context) {
	cleared, err := j.sessions.Sweep(ctx, time.Now())
	if err != nil {
		j.logger.Error(ctx, "session sweep failed", "error", err)
		return
	}
	if cleared > 0 {
		j.logger.Info(ctx, "session sweep finished", "cleared", cleared)
	}
}

func (j *Jobs) expireOnce(ctx context.Context) {
	flipped, err := j.verify.ExpirePasses(ctx, time.Now())
	if err != nil {
		j.logger.Error(ctx, "pass expiry failed", "error", err)
		return
	}
	if flipped > 0 {
		j.logger.Info(ctx, "pass expiry finished", "expired", flipped)
	}
}
