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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-mlp/pkg/acq"
	"jinr.ru/greenlab/go-mlp/pkg/device"
	"jinr.ru/greenlab/go-mlp/pkg/layers"
	"jinr.ru/greenlab/go-mlp/pkg/log"
)

const (
	ContentTypeBatch = "application/vnd.go-mlp.batch"
	FormatJSON       = "json"
)

type Count struct {
	Count uint32 `json:"count"`
}

type Drops struct {
	Drops uint32 `json:"drops"`
}

type FifoStatus struct {
	Occupancy uint32 `json:"occupancy"`
	Length    uint32 `json:"length"`
}

type RegValue struct {
	Name  string `json:"name,omitempty"`
	Value uint32 `json:"value"`
}

// Batch is the JSON form of a batch frame
type Batch struct {
	Seq       uint32   `json:"seq"`
	Drops     uint32   `json:"drops"`
	Available bool     `json:"available"`
	Degraded  bool     `json:"degraded"`
	Words     []uint32 `json:"words"`
}

// Handler returns the API router wrapped in logging, recovery and compression middleware
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	subRouter := router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/acq/start", s.handleAcqStart()).Methods("POST")
	subRouter.HandleFunc("/acq/stop", s.handleAcqStop()).Methods("POST")
	subRouter.HandleFunc("/acq/data", s.handleAcqData()).Methods("GET")
	subRouter.HandleFunc("/acq/count", s.handleAcqCount()).Methods("GET")
	subRouter.HandleFunc("/acq/drops", s.handleAcqDrops()).Methods("GET")
	subRouter.HandleFunc("/acq/status", s.handleAcqStatus()).Methods("GET")
	subRouter.HandleFunc("/fifo", s.handleFifo()).Methods("GET")
	subRouter.HandleFunc("/fifo/reset", s.handleFifoReset()).Methods("POST")
	subRouter.HandleFunc("/trigger", s.handleTrigger()).Methods("POST")
	subRouter.HandleFunc("/reg", s.handleRegReadAll()).Methods("GET")
	subRouter.HandleFunc("/reg/{name}", s.handleRegRead()).Methods("GET")
	subRouter.HandleFunc("/reg/{name}", s.handleRegWrite()).Methods("POST")

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.Printer()),
		handlers.PrintRecoveryStack(true),
	)
	return handlers.LoggingHandler(log.Writer(), recovery(handlers.CompressHandler(router)))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Could not encode response: %s", err)
	}
}

// regErrorStatus maps register errors to HTTP status codes
func regErrorStatus(err error) int {
	var unknown device.ErrUnknownReg
	var readOnly device.ErrReadOnly
	if errors.As(err, &unknown) || errors.As(err, &readOnly) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func (s *Server) handleAcqStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling acquisition start request")
		s.ctrl.Start(s.Context)
		writeJSON(w, s.ctrl.Status())
	}
}

func (s *Server) handleAcqStop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling acquisition stop request")
		if err := s.ctrl.Stop(); err != nil {
			log.Warning("Acquisition was degraded: %s", err)
		}
		s.persistTotals()
		writeJSON(w, s.ctrl.Status())
	}
}

func (s *Server) handleAcqData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var flags uint32
		if s.ctrl.Available() {
			flags |= layers.FlagAvailable
		}
		if s.ctrl.State() == acq.StateDegraded {
			flags |= layers.FlagDegraded
		}
		drops := s.ctrl.DropCount()
		words := s.ctrl.Retrieve()
		seq := s.seq.Add(1) - 1
		log.Debug("Handling data request: seq %d, %d words", seq, len(words))

		if r.URL.Query().Get("format") == FormatJSON {
			if words == nil {
				words = []uint32{}
			}
			writeJSON(w, &Batch{
				Seq:       seq,
				Drops:     drops,
				Available: flags&layers.FlagAvailable != 0,
				Degraded:  flags&layers.FlagDegraded != 0,
				Words:     words,
			})
			return
		}

		data, err := layers.EncodeBatch(&layers.BatchLayer{
			Seq:   seq,
			Drops: drops,
			Flags: flags,
			Words: words,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentTypeBatch)
		w.Write(data)
	}
}

func (s *Server) handleAcqCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &Count{Count: s.ctrl.BufferedCount()})
	}
}

func (s *Server) handleAcqDrops() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &Drops{Drops: s.ctrl.DropCount()})
	}
}

func (s *Server) handleAcqStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.ctrl.Status())
	}
}

func (s *Server) handleFifo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		occupancy, err := s.fifo.Occupancy()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		length, err := s.fifo.Length()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, &FifoStatus{Occupancy: occupancy, Length: length})
	}
}

func (s *Server) handleFifoReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling FIFO reset request")
		if s.ctrl.State() == acq.StateRunning {
			http.Error(w, ErrAcquisitionRunning{}.Error(), http.StatusConflict)
			return
		}
		if err := s.fifo.Reset(); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
}

func (s *Server) handleTrigger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling trigger request")
		if err := s.device.TrigPulse(); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
}

func (s *Server) handleRegReadAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := s.device.ReadAll()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, values)
	}
}

func (s *Server) handleRegRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		log.Debug("Handling reg read request: %s", name)
		value, err := s.device.ReadReg(name)
		if err != nil {
			http.Error(w, err.Error(), regErrorStatus(err))
			return
		}
		writeJSON(w, &RegValue{Name: name, Value: value})
	}
}

func (s *Server) handleRegWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		reg := &RegValue{}
		if err := json.NewDecoder(r.Body).Decode(reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling reg write request: %s = 0x%x", name, reg.Value)
		if err := s.device.WriteReg(name, reg.Value); err != nil {
			http.Error(w, err.Error(), regErrorStatus(err))
			return
		}
		writeJSON(w, &RegValue{Name: name, Value: reg.Value})
	}
}
