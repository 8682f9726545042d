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

package command

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jinr.ru/greenlab/go-mlp/pkg/config"
	"jinr.ru/greenlab/go-mlp/pkg/srv"
)

func newTestClient(t *testing.T) (*ApiClient, *srv.Server) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Device.Simulate = true
	cfg.Device.SimRate = 0
	cfg.Acquisition.AutoStart = false
	cfg.Acquisition.PollInterval = "100us"
	cfg.DBPath = filepath.Join(t.TempDir(), "state.db")

	s, err := srv.NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewServer() err=%v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})

	c := NewApiClient(cfg)
	c.ApiPrefix = ts.URL + "/api"
	return c, s
}

func TestNewApiClient(t *testing.T) {
	cfg := config.NewDefaultConfig()
	c := NewApiClient(cfg)
	if c.ApiPrefix != "http://127.0.0.1:8010/api" {
		t.Fatalf("ApiPrefix=%s", c.ApiPrefix)
	}
}

func TestClientAcquisition(t *testing.T) {
	c, s := newTestClient(t)
	s.Sim().Push(10, 11, 12, 13)

	status, err := c.AcqStart()
	if err != nil || status.State != "running" {
		t.Fatalf("AcqStart()=%+v err=%v", status, err)
	}

	var got []uint32
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		batch, err := c.AcqData()
		if err != nil {
			t.Fatalf("AcqData() err=%v", err)
		}
		got = append(got, batch.Words...)
	}
	for len(got) < 4 && time.Now().Before(deadline) {
		batch, err := c.AcqDataJSON()
		if err != nil {
			t.Fatalf("AcqDataJSON() err=%v", err)
		}
		got = append(got, batch.Words...)
	}
	if len(got) != 4 || got[0] != 10 || got[3] != 13 {
		t.Fatalf("got %v", got)
	}
	if batch, err := c.AcqDataJSON(); err != nil || len(batch.Words) != 0 {
		t.Fatalf("AcqDataJSON()=%+v err=%v", batch, err)
	}

	if _, err := c.AcqCount(); err != nil {
		t.Fatal(err)
	}
	if drops, err := c.AcqDrops(); err != nil || drops != 0 {
		t.Fatalf("AcqDrops()=%d err=%v", drops, err)
	}

	err = c.FifoReset()
	var apiErr ErrApi
	if !errors.As(err, &apiErr) || !strings.HasPrefix(apiErr.Status, "409") {
		t.Fatalf("FifoReset() while running err=%v", err)
	}

	status, err = c.AcqStop()
	if err != nil || status.State != "stopped" || status.Words != 4 {
		t.Fatalf("AcqStop()=%+v err=%v", status, err)
	}
	if status, err = c.AcqStatus(); err != nil || status.State != "stopped" {
		t.Fatalf("AcqStatus()=%+v err=%v", status, err)
	}
	if err := c.FifoReset(); err != nil {
		t.Fatalf("FifoReset() err=%v", err)
	}
	fs, err := c.FifoStatus()
	if err != nil || fs.Length != 0 {
		t.Fatalf("FifoStatus()=%+v err=%v", fs, err)
	}
}

func TestClientRegisters(t *testing.T) {
	c, _ := newTestClient(t)

	if err := c.RegWrite("led", 0x3); err != nil {
		t.Fatalf("RegWrite() err=%v", err)
	}
	if v, err := c.RegRead("led"); err != nil || v != 0x3 {
		t.Fatalf("RegRead()=%d err=%v", v, err)
	}
	all, err := c.RegReadAll()
	if err != nil || all["led"] != 0x3 {
		t.Fatalf("RegReadAll()=%v err=%v", all, err)
	}
	if err := c.Trigger(); err != nil {
		t.Fatalf("Trigger() err=%v", err)
	}

	var apiErr ErrApi
	if err := c.RegWrite("vfloat", 1); !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "read only") {
		t.Fatalf("RegWrite(vfloat) err=%v", err)
	}
	if _, err := c.RegRead("nope"); !errors.As(err, &apiErr) || !strings.HasPrefix(apiErr.Status, "400") {
		t.Fatalf("RegRead(nope) err=%v", err)
	}
}
