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

package srv

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"jinr.ru/greenlab/go-mlp/pkg/acq"
	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/device"
	"jinr.ru/greenlab/go-mlp/pkg/fifo"
	"jinr.ru/greenlab/go-mlp/pkg/log"
	"jinr.ru/greenlab/go-mlp/pkg/regs"
	"jinr.ru/greenlab/go-mlp/pkg/state"
)

const (
	ShutdownTimeout = 5 * time.Second
	// register regions are never smaller than the register map in simulation mode
	simRangeSize = 0x100
)

// Server owns the acquisition controller, the instrument registers and the HTTP API
type Server struct {
	context.Context
	*config.Config

	ctrl   *acq.Controller
	fifo   fifo.Fifo
	sim    *fifo.Sim
	device *device.MLP
	state  *state.State

	// seq numbers batch frames handed out over the API
	seq     atomic.Uint32
	closers []io.Closer
}

// NewServer opens the state database and the device register regions.
// With device.simulate set the registers live in memory and the FIFO is simulated.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	acqCfg, err := acq.NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	st, err := state.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s := &Server{
		Context: ctx,
		Config:  cfg,
		state:   st,
		closers: []io.Closer{st},
	}

	var ctl, sts regs.Memory
	if cfg.Device.Simulate {
		size := cfg.Device.RangeSize
		if size < simRangeSize {
			size = simRangeSize
		}
		log.Info("Simulating device registers and FIFO")
		ctl, sts = regs.NewMem(size), regs.NewMem(size)
		s.sim = fifo.NewSim(cfg.Device.SimDepth)
		s.fifo = s.sim
	} else {
		regions := make([]*regs.MMap, 0, 3)
		for _, base := range []uint32{cfg.Device.ControlAddr, cfg.Device.StatusAddr, cfg.Device.FifoAddr} {
			m, err := regs.Open(cfg.Device.DevMem, base, cfg.Device.RangeSize)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.closers = append(s.closers, m)
			regions = append(regions, m)
		}
		ctl, sts = regions[0], regions[1]
		s.fifo = fifo.NewAxiFifo(regions[2])
	}

	s.device = device.NewMLP(ctl, sts, st)
	s.ctrl = acq.NewController(s.fifo, acqCfg)
	return s, nil
}

// Controller ...
func (s *Server) Controller() *acq.Controller {
	return s.ctrl
}

// Sim returns the simulated FIFO or nil when the server drives real hardware
func (s *Server) Sim() *fifo.Sim {
	return s.sim
}

// Init restores persisted totals and control registers and starts acquisition
// if configured to do so
func (s *Server) Init() error {
	totals, err := s.state.GetTotals()
	if err != nil {
		return err
	}
	log.Info("Restored acquisition totals: cycles %d, words %d, drop events %d",
		totals.Cycles, totals.Words, totals.DropEvents)
	s.ctrl.SetTotals(totals)

	if err := s.device.Restore(); err != nil {
		return err
	}
	if s.Acquisition.AutoStart {
		s.ctrl.Start(s.Context)
	}
	return nil
}

func (s *Server) persistTotals() {
	if err := s.state.SetTotals(s.ctrl.Totals()); err != nil {
		log.Error("Could not persist acquisition totals: %s", err)
	}
}

func (s *Server) persistLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.Context.Done():
			return
		case <-ticker.C:
			s.persistTotals()
		}
	}
}

// Run serves the API until the server context is done
func (s *Server) Run() error {
	defer s.Close()

	if err := s.Init(); err != nil {
		return err
	}
	if s.sim != nil {
		go s.sim.Generate(s.Context, s.Device.SimRate)
	}
	interval, err := s.Config.StatsInterval()
	if err != nil {
		return err
	}
	if interval > 0 {
		go s.persistLoop(interval)
	}

	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    s.ApiEndpoint(),
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting API server: %s", s.ApiEndpoint())
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case <-s.Context.Done():
		log.Info("Shutting down")
	case err = <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(ctx); shutdownErr != nil {
		log.Warning("API server shutdown: %s", shutdownErr)
	}
	if stopErr := s.ctrl.Stop(); stopErr != nil {
		log.Warning("Acquisition stopped with error: %s", stopErr)
	}
	return err
}

// Close stops acquisition, persists totals and releases the state database and
// register regions
func (s *Server) Close() error {
	if s.closers == nil {
		return nil
	}
	var firstErr error
	if s.ctrl != nil {
		s.ctrl.Stop()
		s.persistTotals()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
