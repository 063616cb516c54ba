// commands_test.go

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

package main

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/SMerrony/e88"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, strconv.Itoa(conn.LocalAddr().(*net.UDPAddr).Port)
}

func readFrame(t *testing.T, conn *net.UDPConn) e88.Frame {
	t.Helper()
	buff := make([]byte, 64)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buff)
	require.NoError(t, err)
	f, err := e88.ParseFrame(buff[:n])
	require.NoError(t, err)
	return f
}

func TestSendOnce(t *testing.T) {
	conn, port := listen(t)

	err := newApp().Run([]string{"e88ctl", "send", "--ip", "127.0.0.1", "--port", port,
		"--proto", "new", "--throttle", "1", "--headless", "--takeoff", "--once"})
	require.NoError(t, err)

	f := readFrame(t, conn)
	assert.Equal(t, e88.ProtoNew, f.Protocol)
	assert.Equal(t, uint8(255), f.Throttle)
	assert.Equal(t, uint8(128), f.Roll)
	assert.True(t, f.Headless())
	assert.False(t, f.Rotate())
	assert.Contains(t, f.OneShots(), e88.OneShotTakeOff)
}

func TestSendForDuration(t *testing.T) {
	conn, port := listen(t)

	err := newApp().Run([]string{"e88ctl", "send", "--ip", "127.0.0.1", "--port", port,
		"--rate", "100", "--duration", "200ms", "--land"})
	require.NoError(t, err)

	first := readFrame(t, conn)
	assert.Equal(t, e88.ProtoLegacy, first.Protocol)
	assert.Equal(t, []e88.OneShot{e88.OneShotLand}, first.OneShots())
	readFrame(t, conn) // more than one frame went out
}

func TestSendConfigFile(t *testing.T) {
	conn, port := listen(t)
	path := filepath.Join(t.TempDir(), "drone.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addr": "127.0.0.1", "port": 1, "protocol": "new"}`), 0o644))

	// --port overrides the file, the protocol comes from it
	err := newApp().Run([]string{"e88ctl", "send", "--config", path, "--port", port, "--once"})
	require.NoError(t, err)

	f := readFrame(t, conn)
	assert.Equal(t, e88.ProtoNew, f.Protocol)
}

func TestSendRejectsBadProtocol(t *testing.T) {
	err := newApp().Run([]string{"e88ctl", "send", "--ip", "127.0.0.1", "--proto", "v3", "--once"})
	assert.ErrorIs(t, err, e88.ErrUnknownProtocol)

	err = newApp().Run([]string{"e88ctl", "send", "--ip", "127.0.0.1", "--rate", "0", "--once"})
	assert.ErrorIs(t, err, e88.ErrBadRate)
}

func TestDecodeNeedsFile(t *testing.T) {
	err := newApp().Run([]string{"e88ctl", "decode"})
	assert.Error(t, err)

	err = newApp().Run([]string{"e88ctl", "decode", filepath.Join(t.TempDir(), "missing.pcap")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
