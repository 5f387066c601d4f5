package session

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultSweepInterval = 10 * time.Minute

// Purger deletes expired sessions and reports how many were removed.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Sweeper periodically removes expired sessions from stores without native expiry.
type Sweeper struct {
	purger   Purger
	interval time.Duration
}

// NewSweeper constructs a sweeper. A non-positive interval uses the default.
func NewSweeper(purger Purger, interval time.Duration) *Sweeper {
	if purger == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{purger: purger, interval: interval}
}

// Start launches the sweep loop in a background goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
	log.Infof("session sweeper started (interval=%s)", s.interval)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	removed, errPurge := s.purger.Purge(ctx)
	if errPurge != nil {
		log.WithError(errPurge).Warn("session sweeper: purge failed")
		return
	}
	if removed > 0 {
		log.WithField("removed", removed).Debug("session sweeper: expired sessions removed")
	}
}
