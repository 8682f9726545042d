/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package acq drains the ADC FIFO into memory and hands the collected
// samples over to a consumer.
//
// The drain worker is the only writer of the batch buffer. A consumer takes
// the words accumulated since its previous call with Retrieve. Storage that
// has been handed to a consumer is never written again: the worker switches
// to fresh storage when it clears the buffer at the start of the next cycle.
package acq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/fifo"
	"jinr.ru/greenlab/go-mlp/pkg/log"
)

type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateStopped
	StateDegraded
)

var stateNames = map[State]string{
	StateNotStarted: "not_started",
	StateRunning:    "running",
	StateStopped:    "stopped",
	StateDegraded:   "degraded",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

type Config struct {
	// OverflowThreshold is the FIFO length at which samples may be lost by the device
	OverflowThreshold uint32
	// PollInterval is the pause after a poll that found the FIFO empty.
	// Zero means yield the processor and poll again.
	PollInterval time.Duration
	// Reserve is the initial capacity of the batch buffer in words
	Reserve int
	// MaxWords limits the batch buffer, zero means no limit
	MaxWords int
}

// NewConfig ...
func NewConfig(cfg *config.Config) (Config, error) {
	interval, err := cfg.PollInterval()
	if err != nil {
		return Config{}, err
	}
	return Config{
		OverflowThreshold: cfg.Acquisition.OverflowThreshold,
		PollInterval:      interval,
		Reserve:           cfg.Acquisition.Reserve,
		MaxWords:          cfg.Acquisition.MaxWords,
	}, nil
}

// Totals are lifetime counters. They survive restarts of the worker.
type Totals struct {
	Cycles     uint64 `json:"cycles"`
	Words      uint64 `json:"words"`
	DropEvents uint64 `json:"dropEvents"`
}

type Status struct {
	State     string `json:"state"`
	Available bool   `json:"available"`
	Collected uint32 `json:"collected"`
	Drops     uint32 `json:"drops"`
	// Buffered is the number of words not yet handed to a consumer
	Buffered int `json:"buffered"`
	Totals
	Error string `json:"error,omitempty"`
}

type Controller struct {
	fifo fifo.Fifo
	cfg  Config

	// mu guards buf and taken. buf[:taken] has been handed out.
	mu    sync.Mutex
	buf   []uint32
	taken int

	// worker only
	scratch []uint32

	available atomic.Bool
	collected atomic.Uint32
	dropped   atomic.Uint32
	state     atomic.Int32

	cycles     atomic.Uint64
	words      atomic.Uint64
	dropEvents atomic.Uint64

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	errMu sync.Mutex
	err   error
}

func NewController(f fifo.Fifo, cfg Config) *Controller {
	if cfg.Reserve < 0 {
		cfg.Reserve = 0
	}
	return &Controller{
		fifo: f,
		cfg:  cfg,
		buf:  make([]uint32, 0, cfg.Reserve),
	}
}

// Start launches the drain worker unless it is already running.
// The worker runs until ctx is done or Stop is called.
func (c *Controller) Start(ctx context.Context) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.State() == StateRunning {
		log.Debug("Acquisition is already running")
		return
	}
	// the previous worker may have exited on its own (degraded or parent context done)
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}

	c.setErr(nil)
	workerCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state.Store(int32(StateRunning))

	log.Info("Starting FIFO acquisition: overflow threshold %d, poll interval %s",
		c.cfg.OverflowThreshold, c.cfg.PollInterval)
	go c.run(workerCtx, c.done)
}

// Stop cancels the drain worker and waits until it exits.
// It returns the error that degraded the worker, if any.
func (c *Controller) Stop() error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.cancel != nil {
		c.cancel()
		<-c.done
		c.cancel = nil
		log.Info("FIFO acquisition stopped")
	}
	return c.Err()
}

// Retrieve hands over the words collected since the previous call and marks
// the batch as consumed. The returned slice is never modified afterwards.
func (c *Controller) Retrieve() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.available.Store(false)
	n := len(c.buf)
	batch := c.buf[c.taken:n:n]
	c.taken = n
	return batch
}

// BufferedCount returns the number of words collected during the current drain cycle
func (c *Controller) BufferedCount() uint32 {
	return c.collected.Load()
}

// DropCount returns the number of polls in the current drain cycle that found
// the FIFO at or above the overflow threshold
func (c *Controller) DropCount() uint32 {
	return c.dropped.Load()
}

func (c *Controller) Available() bool {
	return c.available.Load()
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Controller) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.err = err
}

func (c *Controller) Totals() Totals {
	return Totals{
		Cycles:     c.cycles.Load(),
		Words:      c.words.Load(),
		DropEvents: c.dropEvents.Load(),
	}
}

// SetTotals seeds lifetime counters, e.g. with values persisted by a previous process
func (c *Controller) SetTotals(t Totals) {
	c.cycles.Store(t.Cycles)
	c.words.Store(t.Words)
	c.dropEvents.Store(t.DropEvents)
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	buffered := len(c.buf) - c.taken
	c.mu.Unlock()

	s := Status{
		State:     c.State().String(),
		Available: c.Available(),
		Collected: c.BufferedCount(),
		Drops:     c.DropCount(),
		Buffered:  buffered,
		Totals:    c.Totals(),
	}
	if err := c.Err(); err != nil {
		s.Error = err.Error()
	}
	return s
}
