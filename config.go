// config.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package e88

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultDroneAddr = "192.168.4.153"
	defaultDronePort = 2228
	defaultRateHz    = 25.0
)

// Protocol selects one of the two wire formats understood by different
// firmware revisions of the drone.
type Protocol int

// Protocols...
const (
	ProtoLegacy Protocol = iota // 8-byte frames
	ProtoNew                    // 20-byte frames
)

// Configuration errors
var (
	ErrUnknownProtocol = errors.New("unknown protocol")
	ErrBadRate         = errors.New("send rate must be greater than zero")
	ErrBadPort         = errors.New("port must be between 1 and 65535")
)

// ParseProtocol accepts "legacy" or "new" (case-insensitive).
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy":
		return ProtoLegacy, nil
	case "new":
		return ProtoNew, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownProtocol, s)
}

func (p Protocol) valid() bool {
	return p == ProtoLegacy || p == ProtoNew
}

func (p Protocol) String() string {
	switch p {
	case ProtoLegacy:
		return "legacy"
	case ProtoNew:
		return "new"
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler
func (p Protocol) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownProtocol, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Protocol) UnmarshalText(text []byte) error {
	v, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// maxTicks is the number of frames a one-shot command is repeated in
func (p Protocol) maxTicks() int {
	if p == ProtoNew {
		return 50
	}
	return 20
}

// Config holds everything needed to open a control session.
type Config struct {
	Addr      string   `json:"addr"`
	Port      int      `json:"port"`
	LocalPort int      `json:"local_port"` // 0 lets the OS choose
	Protocol  Protocol `json:"protocol"`
	RateHz    float64  `json:"rate_hz"`
}

// DefaultConfig returns the settings for a drone in its factory AP mode.
func DefaultConfig() Config {
	return Config{
		Addr:     defaultDroneAddr,
		Port:     defaultDronePort,
		Protocol: ProtoLegacy,
		RateHz:   defaultRateHz,
	}
}

// Validate checks that the configuration can be used to open a session.
func (c Config) Validate() error {
	if !c.Protocol.valid() {
		return fmt.Errorf("%w %d", ErrUnknownProtocol, int(c.Protocol))
	}
	if !(c.RateHz > 0) {
		return fmt.Errorf("%w, got %v", ErrBadRate, c.RateHz)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w, got %d", ErrBadPort, c.Port)
	}
	if c.LocalPort < 0 || c.LocalPort > 65535 {
		return fmt.Errorf("local %w, got %d", ErrBadPort, c.LocalPort)
	}
	if c.Addr == "" {
		return errors.New("drone address is required")
	}
	return nil
}

// Interval is the period between frames at the configured rate.
func (c Config) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.RateHz)
}

// fileConfig mirrors Config with pointers so that fields missing from a
// file keep their defaults
type fileConfig struct {
	Addr      *string   `json:"addr,omitempty"`
	Port      *int      `json:"port,omitempty"`
	LocalPort *int      `json:"local_port,omitempty"`
	Protocol  *Protocol `json:"protocol,omitempty"`
	RateHz    *float64  `json:"rate_hz,omitempty"`
}

const maxConfigFileSize = 1 * 1024 * 1024

// LoadConfig reads a JSON config file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if fc.Addr != nil {
		cfg.Addr = *fc.Addr
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.LocalPort != nil {
		cfg.LocalPort = *fc.LocalPort
	}
	if fc.Protocol != nil {
		cfg.Protocol = *fc.Protocol
	}
	if fc.RateHz != nil {
		cfg.RateHz = *fc.RateHz
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
