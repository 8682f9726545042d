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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"
)

type DeviceConfig struct {
	DevMem      string `json:"devMem"`
	ControlAddr uint32 `json:"controlAddr"`
	StatusAddr  uint32 `json:"statusAddr"`
	FifoAddr    uint32 `json:"fifoAddr"`
	RangeSize   uint32 `json:"rangeSize"`
	// Simulate replaces /dev/mem with in-memory registers and a simulated FIFO
	Simulate bool `json:"simulate"`
	SimDepth int  `json:"simDepth,omitempty"`
	// SimRate is the number of words per second pushed into the simulated FIFO
	SimRate int `json:"simRate,omitempty"`
}

type AcquisitionConfig struct {
	OverflowThreshold uint32 `json:"overflowThreshold"`
	PollInterval      string `json:"pollInterval"`
	Reserve           int    `json:"reserve"`
	MaxWords          int    `json:"maxWords"`
	AutoStart         bool   `json:"autoStart"`
}

type ApiConfig struct {
	Address       string `json:"address"`
	Port          int    `json:"port"`
	StatsInterval string `json:"statsInterval"`
}

type Config struct {
	Device      *DeviceConfig      `json:"device,omitempty"`
	Acquisition *AcquisitionConfig `json:"acquisition,omitempty"`
	Api         *ApiConfig         `json:"api,omitempty"`
	DBPath      string             `json:"dbPath"`
	LogLevel    string             `json:"logLevel"`
	filepath    string
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) ApiEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Api.Address, c.Api.Port)
}

// PollInterval returns parsed acquisition poll interval
func (c *Config) PollInterval() (time.Duration, error) {
	return parseDuration("acquisition.pollInterval", c.Acquisition.PollInterval)
}

// StatsInterval returns parsed period of persisting acquisition totals
func (c *Config) StatsInterval() (time.Duration, error) {
	return parseDuration("api.statsInterval", c.Api.StatsInterval)
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, ErrInvalidValue{Field: field, What: err.Error()}
	}
	if d < 0 {
		return 0, ErrInvalidValue{Field: field, What: "must not be negative"}
	}
	return d, nil
}

func (c *Config) Validate() error {
	if c.Device == nil || c.Acquisition == nil || c.Api == nil {
		return ErrInvalidValue{Field: "config", What: "device, acquisition and api sections are required"}
	}
	if !c.Device.Simulate {
		if c.Device.DevMem == "" {
			return ErrInvalidValue{Field: "device.devMem", What: "must not be empty"}
		}
		if c.Device.RangeSize == 0 || c.Device.RangeSize%4 != 0 {
			return ErrInvalidValue{Field: "device.rangeSize", What: "must be a positive multiple of 4"}
		}
	}
	if c.Acquisition.OverflowThreshold == 0 {
		return ErrInvalidValue{Field: "acquisition.overflowThreshold", What: "must be > 0"}
	}
	if c.Acquisition.Reserve < 0 {
		return ErrInvalidValue{Field: "acquisition.reserve", What: "must not be negative"}
	}
	if c.Acquisition.MaxWords < 0 {
		return ErrInvalidValue{Field: "acquisition.maxWords", What: "must not be negative"}
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	if _, err := c.StatsInterval(); err != nil {
		return err
	}
	// zero port picks a free one
	if c.Api.Port < 0 || c.Api.Port > 65535 {
		return ErrInvalidValue{Field: "api.port", What: "must be in range 0-65535"}
	}
	if c.DBPath == "" {
		return ErrInvalidValue{Field: "dbPath", What: "must not be empty"}
	}
	return nil
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file. Missing file is not an error, defaults are used then.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		Device: &DeviceConfig{
			DevMem:      DefaultDevMem,
			ControlAddr: DefaultControlAddr,
			StatusAddr:  DefaultStatusAddr,
			FifoAddr:    DefaultFifoAddr,
			RangeSize:   DefaultRangeSize,
			SimDepth:    DefaultSimDepth,
			SimRate:     DefaultSimRate,
		},
		Acquisition: &AcquisitionConfig{
			OverflowThreshold: DefaultOverflowThreshold,
			PollInterval:      DefaultPollInterval,
			Reserve:           DefaultReserve,
			MaxWords:          DefaultMaxWords,
			AutoStart:         true,
		},
		Api: &ApiConfig{
			Address:       DefaultApiAddress,
			Port:          DefaultApiPort,
			StatsInterval: DefaultStatsInterval,
		},
		DBPath:   filepath.Join(DefaultConfigDir(), DBFile),
		LogLevel: DefaultLogLevel,
		filepath: DefaultConfigPath(),
	}
}
