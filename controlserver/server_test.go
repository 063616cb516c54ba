// server_test.go

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

package controlserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SMerrony/e88"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullTransport struct {
	mu sync.Mutex
	n  int
}

func (t *nullTransport) Write(b []byte) (int, error) {
	t.mu.Lock()
	t.n++
	t.mu.Unlock()
	return len(b), nil
}

func (t *nullTransport) Close() error { return nil }

func newTestServer(t *testing.T) (*e88.Drone, *httptest.Server) {
	t.Helper()
	drone, err := e88.NewDrone(e88.DefaultConfig(), &nullTransport{})
	require.NoError(t, err)
	ts := httptest.NewServer(New(drone))
	t.Cleanup(func() {
		ts.Close()
		drone.Close()
	})
	return drone, ts
}

func do(t *testing.T, method, url, body string) (int, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json; charset=UTF-8", resp.Header.Get("Content-Type"))
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := do(t, "GET", ts.URL+"/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "legacy", body["protocol"])
	assert.Equal(t, 128.0, body["roll"])
	assert.Equal(t, 0.0, body["throttle"])
	assert.Equal(t, false, body["running"])
}

func TestPutSticks(t *testing.T) {
	drone, ts := newTestServer(t)

	code, body := do(t, "PUT", ts.URL+"/sticks", `{"roll": 1, "throttle": 0.5}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 255.0, body["roll"])
	assert.Equal(t, 128.0, body["throttle"])
	assert.Equal(t, 128.0, body["pitch"])

	code, _ = do(t, "PUT", ts.URL+"/sticks", `{"yaw": 300, "raw": true}`)
	assert.Equal(t, http.StatusOK, code)
	st := drone.Status()
	assert.Equal(t, uint8(44), st.Yaw)
	assert.Equal(t, uint8(255), st.Roll, "absent fields are unchanged")

	code, body = do(t, "PUT", ts.URL+"/sticks", `{"roll": "left"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])
}

func TestPutFlags(t *testing.T) {
	drone, ts := newTestServer(t)

	code, body := do(t, "PUT", ts.URL+"/flags", `{"headless": true, "stay_high": true}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["headless"])
	assert.Equal(t, true, body["stay_high"])
	assert.Equal(t, false, body["rotate"])

	do(t, "PUT", ts.URL+"/flags", `{"headless": false}`)
	st := drone.Status()
	assert.False(t, st.Headless)
	assert.True(t, st.StayHigh)
}

func TestPutProtocol(t *testing.T) {
	drone, ts := newTestServer(t)

	code, body := do(t, "PUT", ts.URL+"/protocol", `{"protocol": "new"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "new", body["protocol"])
	assert.Len(t, drone.BuildPacket(), e88.NewFrameLen)

	code, body = do(t, "PUT", ts.URL+"/protocol", `{"protocol": "v3"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "unknown protocol")

	code, _ = do(t, "PUT", ts.URL+"/protocol", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, e88.ProtoNew, drone.Protocol())
}

func TestOneShot(t *testing.T) {
	drone, ts := newTestServer(t)

	code, body := do(t, "POST", ts.URL+"/oneshot/takeoff", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"takeoff": 20.0}, body["pending"])
	assert.Equal(t, 20, drone.Pending(e88.OneShotTakeOff))

	code, body = do(t, "POST", ts.URL+"/oneshot/backflip", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "backflip")

	code, _ = do(t, "GET", ts.URL+"/nowhere", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTransmitter(t *testing.T) {
	drone, ts := newTestServer(t)

	code, body := do(t, "POST", ts.URL+"/transmitter/start", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["running"])
	assert.True(t, drone.Running())

	_, body = do(t, "POST", ts.URL+"/transmitter/stop", "")
	assert.Equal(t, false, body["running"])
	assert.False(t, drone.Running())
}

func TestSticksWebsocket(t *testing.T) {
	drone, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sticks/websocket"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"pitch": 1, "throttle": 1}`)))
	require.Eventually(t, func() bool { return drone.Status().Pitch == 255 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint8(255), drone.Status().Throttle)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	var resp errorResponse
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "Bad request!", resp.Error)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	// dropping the connection recentres the sticks
	require.Eventually(t, func() bool {
		st := drone.Status()
		return st.Pitch == 128 && st.Throttle == 0
	}, 2*time.Second, 5*time.Millisecond)
}
