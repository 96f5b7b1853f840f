package auth

import (
	"context"
	"time"
)

// ChallengeJanitor periodically purges verification challenges that are
// past their TTL. Expired rows are already unusable, the sweep just
// keeps the table from growing without bound.
type ChallengeJanitor struct {
	repo     VerificationChallenges
	interval time.Duration
	ttl      time.Duration
	grace    time.Duration
	logger   Logger
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
}

// NewChallengeJanitor sweeps every interval, deleting challenges whose
// code expired more than grace ago.
func NewChallengeJanitor(repo VerificationChallenges, interval, ttl, grace time.Duration, logger Logger) *ChallengeJanitor {
	if logger == nil {
		logger = defLogger{}
	}
	return &ChallengeJanitor{
		repo:     repo,
		interval: interval,
		ttl:      ttl,
		grace:    grace,
		logger:   logger,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// WithClock overrides the time source, used by tests.
func (j *ChallengeJanitor) WithClock(now func() time.Time) *ChallengeJanitor {
	if now != nil {
		j.now = now
	}
	return j
}

// Start runs the sweep loop until Stop is called or the context is done.
func (j *ChallengeJanitor) Start(ctx context.Context) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-j.stop:
				return
			case <-ticker.C:
				if err := j.Sweep(ctx); err != nil {
					j.logger.Error("challenge sweep failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (j *ChallengeJanitor) Stop() {
	select {
	case <-j.stop:
	default:
		close(j.stop)
	}
	<-j.done
}

// Sweep runs one purge pass.
func (j *ChallengeJanitor) Sweep(ctx context.Context) error {
	cutoff := j.now().Add(-(j.ttl + j.grace))

	purged, err := j.repo.PurgeIssuedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if purged > 0 {
		j.logger.Debug("purged expired verification challenges", "count", purged)
	}

	return nil
}
