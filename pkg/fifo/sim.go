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

package fifo

import (
	"context"
	"sync"
	"time"

	"jinr.ru/greenlab/go-mlp/pkg/log"
)

const (
	simTick = time.Millisecond
)

// Sim is an in-memory FIFO of fixed depth. Words pushed into a full Sim
// are discarded the way the hardware discards them.
type Sim struct {
	mu        sync.Mutex
	depth     int
	words     []uint32
	head      int
	discarded uint64
	next      uint32
}

var _ Fifo = &Sim{}

func NewSim(depth int) *Sim {
	return &Sim{
		depth: depth,
		words: make([]uint32, 0, depth),
	}
}

// Push appends words and returns how many of them fit
func (s *Sim) Push(words ...uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	free := s.depth - s.len()
	n := len(words)
	if n > free {
		s.discarded += uint64(n - free)
		n = free
	}
	if s.head > 0 && len(s.words)+n > cap(s.words) {
		s.words = s.words[:copy(s.words, s.words[s.head:])]
		s.head = 0
	}
	s.words = append(s.words, words[:n]...)
	return n
}

func (s *Sim) len() int {
	return len(s.words) - s.head
}

func (s *Sim) Discarded() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

func (s *Sim) Occupancy() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(s.len()), nil
}

func (s *Sim) Length() (uint32, error) {
	return s.Occupancy()
}

func (s *Sim) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = s.words[:0]
	s.head = 0
	return nil
}

func (s *Sim) Pop() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.len() == 0 {
		return 0, ErrEmpty{}
	}
	word := s.words[s.head]
	s.head++
	if s.head == len(s.words) {
		s.words = s.words[:0]
		s.head = 0
	}
	return word, nil
}

// Generate pushes an increasing counter into the FIFO at rate words per second
// until ctx is done.
func (s *Sim) Generate(ctx context.Context, rate int) {
	if rate <= 0 {
		return
	}
	log.Info("Simulated FIFO: generating %d words/s, depth %d", rate, s.depth)
	ticker := time.NewTicker(simTick)
	defer ticker.Stop()

	last := time.Now()
	var carry float64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			carry += now.Sub(last).Seconds() * float64(rate)
			last = now
			n := int(carry)
			if n == 0 {
				continue
			}
			carry -= float64(n)
			burst := make([]uint32, n)
			for i := range burst {
				burst[i] = s.next
				s.next++
			}
			if pushed := s.Push(burst...); pushed < n {
				log.Debug("Simulated FIFO overflow: %d words discarded", n-pushed)
			}
		}
	}
}
