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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jinr.ru/greenlab/go-mlp/pkg/acq"
	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/layers"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Device.Simulate = true
	cfg.Device.SimRate = 0
	cfg.Acquisition.AutoStart = false
	cfg.Acquisition.PollInterval = "100us"
	cfg.DBPath = filepath.Join(t.TempDir(), "state.db")
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewServer() err=%v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init() err=%v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func do(t *testing.T, method, url string, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decodeJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("could not decode %q: %v", data, err)
	}
}

func ramp(n int) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = uint32(i)
	}
	return words
}

func TestApiAcquisition(t *testing.T) {
	s, ts := newTestServer(t, newTestConfig(t))
	const total = 5000
	s.Sim().Push(ramp(total)...)

	code, data := do(t, "POST", ts.URL+"/api/acq/start", "")
	if code != http.StatusOK {
		t.Fatalf("start: %d %s", code, data)
	}
	status := acq.Status{}
	decodeJSON(t, data, &status)
	if status.State != "running" {
		t.Fatalf("status=%+v", status)
	}

	var got []uint32
	var lastSeq uint32
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < total && time.Now().Before(deadline) {
		code, data := do(t, "GET", ts.URL+"/api/acq/data", "")
		if code != http.StatusOK {
			t.Fatalf("data: %d %s", code, data)
		}
		batch, err := layers.DecodeBatch(data)
		if err != nil {
			t.Fatalf("DecodeBatch() err=%v", err)
		}
		if len(got) > 0 && batch.Seq <= lastSeq {
			t.Fatalf("seq %d after %d", batch.Seq, lastSeq)
		}
		lastSeq = batch.Seq
		got = append(got, batch.Words...)
	}
	if len(got) != total {
		t.Fatalf("received %d words", len(got))
	}
	for i, w := range got {
		if w != uint32(i) {
			t.Fatalf("word %d=%d", i, w)
		}
	}

	code, data = do(t, "GET", ts.URL+"/api/acq/data?format=json", "")
	batch := Batch{}
	decodeJSON(t, data, &batch)
	if code != http.StatusOK || len(batch.Words) != 0 || batch.Degraded {
		t.Fatalf("json data: %d %+v", code, batch)
	}

	_, data = do(t, "GET", ts.URL+"/api/acq/drops", "")
	drops := Drops{}
	decodeJSON(t, data, &drops)
	if drops.Drops != 0 {
		t.Fatalf("drops=%d", drops.Drops)
	}
	_, data = do(t, "GET", ts.URL+"/api/acq/count", "")
	count := Count{}
	decodeJSON(t, data, &count)

	code, data = do(t, "POST", ts.URL+"/api/acq/stop", "")
	decodeJSON(t, data, &status)
	if code != http.StatusOK || status.State != "stopped" || status.Words != total {
		t.Fatalf("stop: %d %+v", code, status)
	}
}

func TestApiFifo(t *testing.T) {
	s, ts := newTestServer(t, newTestConfig(t))
	s.Sim().Push(1, 2, 3)

	code, data := do(t, "GET", ts.URL+"/api/fifo", "")
	fs := FifoStatus{}
	decodeJSON(t, data, &fs)
	if code != http.StatusOK || fs.Length != 3 || fs.Occupancy != 3 {
		t.Fatalf("fifo: %d %+v", code, fs)
	}

	do(t, "POST", ts.URL+"/api/acq/start", "")
	if code, _ := do(t, "POST", ts.URL+"/api/fifo/reset", ""); code != http.StatusConflict {
		t.Fatalf("reset while running: %d", code)
	}
	do(t, "POST", ts.URL+"/api/acq/stop", "")

	s.Sim().Push(4, 5)
	if code, data := do(t, "POST", ts.URL+"/api/fifo/reset", ""); code != http.StatusOK {
		t.Fatalf("reset: %d %s", code, data)
	}
	_, data = do(t, "GET", ts.URL+"/api/fifo", "")
	decodeJSON(t, data, &fs)
	if fs.Length != 0 {
		t.Fatalf("fifo after reset: %+v", fs)
	}
}

func TestApiRegisters(t *testing.T) {
	_, ts := newTestServer(t, newTestConfig(t))

	if code, data := do(t, "POST", ts.URL+"/api/reg/period", `{"value": 500}`); code != http.StatusOK {
		t.Fatalf("write: %d %s", code, data)
	}
	code, data := do(t, "GET", ts.URL+"/api/reg/period", "")
	reg := RegValue{}
	decodeJSON(t, data, &reg)
	if code != http.StatusOK || reg.Value != 500 || reg.Name != "period" {
		t.Fatalf("read: %d %+v", code, reg)
	}

	code, data = do(t, "GET", ts.URL+"/api/reg", "")
	all := map[string]uint32{}
	decodeJSON(t, data, &all)
	if code != http.StatusOK || all["period"] != 500 || len(all) != 8 {
		t.Fatalf("read all: %d %v", code, all)
	}

	for _, tc := range []struct {
		method, path, body string
	}{
		{"GET", "/api/reg/voltage", ""},
		{"POST", "/api/reg/voltage", `{"value": 1}`},
		{"POST", "/api/reg/temperature", `{"value": 1}`},
		{"POST", "/api/reg/period", `{"value": "x"`},
	} {
		if code, _ := do(t, tc.method, ts.URL+tc.path, tc.body); code != http.StatusBadRequest {
			t.Fatalf("%s %s: %d, want 400", tc.method, tc.path, code)
		}
	}

	if code, _ := do(t, "POST", ts.URL+"/api/trigger", ""); code != http.StatusOK {
		t.Fatalf("trigger: %d", code)
	}
}

func TestStateRestoredOnRestart(t *testing.T) {
	cfg := newTestConfig(t)
	s, err := NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.device.SetPeriod(1234); err != nil {
		t.Fatal(err)
	}
	s.Sim().Push(ramp(100)...)
	s.Controller().Start(context.Background())
	deadline := time.Now().Add(5 * time.Second)
	for s.Controller().Totals().Cycles == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() err=%v", err)
	}

	s, err = NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if totals := s.Controller().Totals(); totals.Words != 100 || totals.Cycles != 1 {
		t.Fatalf("Totals()=%+v", totals)
	}
	if v, _ := s.device.ReadReg("period"); v != 1234 {
		t.Fatalf("period=%d after restart", v)
	}
}

func TestNewServerInvalidConfig(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Acquisition.PollInterval = "soon"
	if _, err := NewServer(context.Background(), cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunShutsDown(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Api.Port = 0
	cfg.Api.StatsInterval = "1ms"
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewServer(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Run() }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() err=%v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return")
	}
}
