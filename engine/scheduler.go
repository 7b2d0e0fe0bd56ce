// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"context"
	"sync"
	"time"

	log "github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

const (
	// DefaultDispatchInterval is the period between sweeps when the
	// configuration does not say otherwise.
	DefaultDispatchInterval = 30 * time.Second

	// stopGracePeriod is how long Stop waits for an in-flight cycle
	// before cancelling its context.
	stopGracePeriod = 5 * time.Second
)

// Scheduler drives the periodic dispatch sweep from a single goroutine.
// The first cycle fires one full interval after Start, not immediately.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   log.Logger

	lock    sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	cancel  context.CancelFunc
}

// NewScheduler returns a stopped scheduler. A non-positive interval falls
// back to DefaultDispatchInterval.
func NewScheduler(sweeper Sweeper, interval time.Duration, logger log.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultDispatchInterval
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.Named("scheduler"),
	}
}

// Start launches the periodic loop. Starting a running scheduler warns and
// does nothing.
func (s *Scheduler) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.running {
		s.logger.Warn("scheduler already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx, s.stopCh, s.doneCh)
	s.logger.Info("dispatch scheduler started", "interval", s.interval)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle runs one sweep, containing any panic so a bad cycle can never
// kill the loop.
func (s *Scheduler) runCycle(ctx context.Context) {
	defer metrics.MeasureSince([]string{"pinpon", "scheduler", "cycle"}, time.Now())
	defer func() {
		if r := recover(); r != nil {
			metrics.IncrCounter([]string{"pinpon", "scheduler", "panic"}, 1)
			s.logger.Error("dispatch cycle panicked", "panic", r)
		}
	}()

	assigned, err := s.sweeper.PeriodicDispatch(ctx)
	if err != nil {
		s.logger.Warn("dispatch cycle finished with errors", "assigned", assigned, "error", err)
		return
	}
	if assigned > 0 {
		s.logger.Info("dispatch cycle complete", "assigned", assigned)
	}
}

// Stop halts the loop. An in-flight cycle gets up to stopGracePeriod to
// finish before its context is cancelled. Stopping a stopped scheduler is
// a no-op.
func (s *Scheduler) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.running {
		return
	}
	s.running = false

	close(s.stopCh)
	select {
	case <-s.doneCh:
	case <-time.After(stopGracePeriod):
		s.logger.Warn("dispatch cycle did not finish in time, cancelling")
		s.cancel()
		<-s.doneCh
	}
	s.cancel()

	s.logger.Info("dispatch scheduler stopped")
}

// IsRunning reports whether the periodic loop is live.
func (s *Scheduler) IsRunning() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.running
}
