// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package monitor

import (
	"fmt"
	"sync"
	"time"

	log "github.com/hashicorp/go-hclog"

	"github.com/loan-mgt/fast-pin-pon-sub002/helper"
)

// Monitor streams log messages off an hclog InterceptLogger via a
// registered SinkAdapter, allowing a caller to follow the log at a
// different level than the agent itself runs at.
type Monitor interface {
	// Start returns a channel that receives each log message as it is
	// written.
	Start() <-chan []byte

	// Stop deregisters the sink from the InterceptLogger and shuts the
	// stream down.
	Stop()
}

type monitor struct {
	// protects droppedCount and logCh
	sync.Mutex

	sink log.SinkAdapter

	// logger is the InterceptLogger the sink is registered on
	logger log.InterceptLogger

	// logCh buffers messages between the sink and the stream reader
	logCh chan []byte

	// doneCh is closed on Stop to tear down both goroutines
	doneCh chan struct{}

	// droppedCount tracks messages discarded because logCh was full,
	// only accessed under lock
	droppedCount int
	bufSize      int

	// droppedDuration is how often the drop counter is flushed into the
	// stream as a warning
	droppedDuration time.Duration
}

// New creates a Monitor over the given logger. Nothing is registered or
// streamed until Start is called.
func New(buf int, logger log.InterceptLogger, opts *log.LoggerOptions) Monitor {
	return newMonitor(buf, logger, opts)
}

func newMonitor(buf int, logger log.InterceptLogger, opts *log.LoggerOptions) *monitor {
	m := &monitor{
		logger:          logger,
		logCh:           make(chan []byte, buf),
		doneCh:          make(chan struct{}),
		bufSize:         buf,
		droppedDuration: 3 * time.Second,
	}

	opts.Output = m
	m.sink = log.NewSinkAdapter(opts)

	return m
}

// Stop detaches the sink from the logger and tears the stream down.
func (m *monitor) Stop() {
	m.logger.DeregisterSink(m.sink)
	close(m.doneCh)
}

// Start registers the sink on the monitor's logger and begins forwarding
// log messages to the returned channel.
func (m *monitor) Start() <-chan []byte {
	m.logger.RegisterSink(m.sink)

	streamCh := make(chan []byte, m.bufSize)

	// pump messages from the sink buffer to the stream
	go func() {
		defer close(streamCh)

		for {
			select {
			case msg := <-m.logCh:
				select {
				case <-m.doneCh:
					return
				case streamCh <- msg:
				}
			case <-m.doneCh:
				return
			}
		}
	}()

	// periodically fold the drop counter back into the stream so the
	// reader knows the buffer overflowed
	go func() {
		timer, stop := helper.NewSafeTimer(m.droppedDuration)
		defer stop()

		for {
			timer.Reset(m.droppedDuration)

			select {
			case <-m.doneCh:
				return
			case <-timer.C:
				m.Lock()

				if m.droppedCount > 0 {
					dropped := fmt.Sprintf("[WARN] Monitor dropped %d logs during monitor request\n", m.droppedCount)
					select {
					case <-m.doneCh:
						m.Unlock()
						return
					// the buffer may have drained enough to take the
					// warning directly
					case m.logCh <- []byte(dropped):
					default:
						// evict one message to make room for the warning
						select {
						case <-m.logCh:
							m.droppedCount++
							dropped = fmt.Sprintf("[WARN] Monitor dropped %d logs during monitor request\n", m.droppedCount)
						default:
						}
						m.logCh <- []byte(dropped)
					}
					m.droppedCount = 0
				}
				m.Unlock()
			}
		}
	}()

	return streamCh
}

// Write buffers the latest log message for the stream, dropping it if the
// buffer is full.
func (m *monitor) Write(p []byte) (n int, err error) {
	m.Lock()
	defer m.Unlock()

	select {
	case <-m.doneCh:
		return
	default:
	}

	msg := make([]byte, len(p))
	copy(msg, p)

	select {
	case m.logCh <- msg:
	default:
		m.droppedCount++
	}

	return len(p), nil
}
