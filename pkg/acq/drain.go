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

package acq

import (
	"context"
	"runtime"
	"time"

	"jinr.ru/greenlab/go-mlp/pkg/log"
)

func (c *Controller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer c.state.CompareAndSwap(int32(StateRunning), int32(StateStopped))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		length, err := c.drain()
		if err != nil {
			c.fail(err)
			return
		}
		if length > 0 {
			continue
		}

		if c.cfg.PollInterval <= 0 {
			runtime.Gosched()
			continue
		}
		if timer == nil {
			timer = time.NewTimer(c.cfg.PollInterval)
		} else {
			timer.Reset(c.cfg.PollInterval)
		}
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (c *Controller) fail(err error) {
	c.setErr(err)
	c.state.Store(int32(StateDegraded))
	log.Error("FIFO acquisition degraded: %s", err)
}

// drain performs one poll of the FIFO and returns the length it observed
func (c *Controller) drain() (uint32, error) {
	if c.collected.Load() == 0 {
		c.recycle()
	}

	length, err := c.fifo.Length()
	if err != nil {
		return 0, ErrDeviceUnavailable{Op: "length", Err: err}
	}

	if length >= c.cfg.OverflowThreshold {
		drops := c.dropped.Add(1)
		c.dropEvents.Add(1)
		log.Debug("FIFO length %d reached overflow threshold %d, drops in cycle: %d",
			length, c.cfg.OverflowThreshold, drops)
	}

	if length > 0 {
		return length, c.fill(int(length))
	}

	// end of drain cycle
	c.available.Store(true)
	if c.collected.Swap(0) > 0 {
		c.cycles.Add(1)
	}
	c.dropped.Store(0)
	return 0, nil
}

// fill pops exactly n words and appends them to the batch buffer.
// Words popped before a register failure are kept.
func (c *Controller) fill(n int) error {
	// buf is written by this goroutine only, reading its length needs no lock
	if c.cfg.MaxWords > 0 && len(c.buf)+n > c.cfg.MaxWords {
		return ErrBufferExhausted{Limit: c.cfg.MaxWords, Need: len(c.buf) + n}
	}

	if cap(c.scratch) < n {
		c.scratch = make([]uint32, n)
	}
	words := c.scratch[:n]

	var popErr error
	popped := 0
	for ; popped < n; popped++ {
		word, err := c.fifo.Pop()
		if err != nil {
			popErr = ErrDeviceUnavailable{Op: "pop", Err: err}
			break
		}
		words[popped] = word
	}

	c.mu.Lock()
	c.buf = append(c.buf, words[:popped]...)
	c.mu.Unlock()

	c.collected.Add(uint32(popped))
	c.words.Add(uint64(popped))
	return popErr
}

// recycle clears the batch buffer before a new drain cycle once the consumer
// has taken all of it. Handed out storage is left to the consumer.
func (c *Controller) recycle() {
	// only the worker sets available to true, so false observed here stays false
	if c.available.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) == 0 || c.taken < len(c.buf) {
		return
	}
	c.buf = make([]uint32, 0, c.cfg.Reserve)
	c.taken = 0
}
