// network.go

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
	"fmt"
	"log"
	"net"
	"strconv"
)

// Transport is where control frames are written.
// Each Write carries exactly one frame; nothing is ever read back.
// A connected *net.UDPConn satisfies it.
type Transport interface {
	Write(b []byte) (n int, err error)
	Close() error
}

// Logf is the package diagnostic logger, it defaults to log.Printf.
// Only lifecycle events are logged, never individual frames or send failures.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger, nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// dialUDP opens a connected UDP socket to the drone
func dialUDP(cfg Config) (*net.UDPConn, error) {
	droneAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Addr, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve drone address: %w", err)
	}
	var localAddr *net.UDPAddr
	if cfg.LocalPort != 0 {
		localAddr = &net.UDPAddr{Port: cfg.LocalPort}
	}
	conn, err := net.DialUDP("udp", localAddr, droneAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create control connection: %w", err)
	}
	return conn, nil
}
