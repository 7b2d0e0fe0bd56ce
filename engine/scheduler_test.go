// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shoenig/test/must"

	"github.com/loan-mgt/fast-pin-pon-sub002/ci"
	"github.com/loan-mgt/fast-pin-pon-sub002/helper/testlog"
)

type fakeSweeper struct {
	mu       sync.Mutex
	calls    int
	assigned int
	err      error
	doPanic  bool
}

func (f *fakeSweeper) PeriodicDispatch(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.doPanic {
		panic("sweep exploded")
	}
	return f.assigned, f.err
}

func (f *fakeSweeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// waitForCalls polls until the sweeper has run at least n cycles.
func waitForCalls(t *testing.T, f *fakeSweeper, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for f.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d cycles, got %d", n, f.count())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestScheduler_RunsPeriodically(t *testing.T) {
	ci.Parallel(t)

	fs := &fakeSweeper{assigned: 1}
	s := NewScheduler(fs, 10*time.Millisecond, testlog.HCLogger(t))

	s.Start()
	must.True(t, s.IsRunning())
	waitForCalls(t, fs, 3)
	s.Stop()
	must.False(t, s.IsRunning())

	// the loop is gone, the count is frozen
	frozen := fs.count()
	time.Sleep(50 * time.Millisecond)
	must.Eq(t, frozen, fs.count())
}

// TestScheduler_InitialDelay checks the first cycle waits one full
// interval instead of firing at Start.
func TestScheduler_InitialDelay(t *testing.T) {
	ci.Parallel(t)

	fs := &fakeSweeper{}
	s := NewScheduler(fs, 500*time.Millisecond, testlog.HCLogger(t))

	s.Start()
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	must.Zero(t, fs.count())
}

func TestScheduler_DoubleStart(t *testing.T) {
	ci.Parallel(t)

	fs := &fakeSweeper{}
	s := NewScheduler(fs, 10*time.Millisecond, testlog.HCLogger(t))

	s.Start()
	s.Start()
	must.True(t, s.IsRunning())
	waitForCalls(t, fs, 2)

	s.Stop()
	must.False(t, s.IsRunning())
}

func TestScheduler_StopIdempotent(t *testing.T) {
	ci.Parallel(t)

	s := NewScheduler(&fakeSweeper{}, 10*time.Millisecond, testlog.HCLogger(t))

	// never started
	s.Stop()
	must.False(t, s.IsRunning())

	s.Start()
	s.Stop()
	s.Stop()
	must.False(t, s.IsRunning())
}

func TestScheduler_Restart(t *testing.T) {
	ci.Parallel(t)

	fs := &fakeSweeper{}
	s := NewScheduler(fs, 10*time.Millisecond, testlog.HCLogger(t))

	s.Start()
	waitForCalls(t, fs, 1)
	s.Stop()

	s.Start()
	before := fs.count()
	waitForCalls(t, fs, before+1)
	s.Stop()
}

// TestScheduler_SurvivesPanic panics every cycle and expects the loop to
// keep ticking.
func TestScheduler_SurvivesPanic(t *testing.T) {
	ci.Parallel(t)

	fs := &fakeSweeper{doPanic: true}
	s := NewScheduler(fs, 10*time.Millisecond, testlog.HCLogger(t))

	s.Start()
	waitForCalls(t, fs, 3)
	s.Stop()
	must.False(t, s.IsRunning())
}

// TestScheduler_SurvivesErrors keeps the loop alive when every sweep
// reports a failure.
func TestScheduler_SurvivesErrors(t *testing.T) {
	ci.Parallel(t)

	fs := &fakeSweeper{err: errors.New("backend down")}
	s := NewScheduler(fs, 10*time.Millisecond, testlog.HCLogger(t))

	s.Start()
	waitForCalls(t, fs, 3)
	s.Stop()
}

func TestScheduler_DefaultInterval(t *testing.T) {
	ci.Parallel(t)

	s := NewScheduler(&fakeSweeper{}, 0, testlog.HCLogger(t))
	must.Eq(t, DefaultDispatchInterval, s.interval)

	s = NewScheduler(&fakeSweeper{}, -time.Second, testlog.HCLogger(t))
	must.Eq(t, DefaultDispatchInterval, s.interval)
}
