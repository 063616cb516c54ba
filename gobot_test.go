// e88 project gobot_test.go

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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gobot.io/x/gobot"
)

var _ gobot.Driver = (*GobotDriver)(nil)

func TestGobotDriverStartHalt(t *testing.T) {
	drone, mt := newTestDrone(t, ProtoLegacy)
	d := NewGobotDriver(drone)

	assert.True(t, strings.HasPrefix(d.Name(), "E88"))
	d.SetName("drone1")
	assert.Equal(t, "drone1", d.Name())
	assert.Nil(t, d.Connection())
	assert.Same(t, drone, d.Drone())

	require.NoError(t, d.Start())
	require.Eventually(t, func() bool { return mt.count() > 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, d.Halt())
	assert.False(t, drone.Running())
}

func TestGobotDriverEvents(t *testing.T) {
	drone, _ := newTestDrone(t, ProtoNew)
	d := NewGobotDriver(drone)
	for _, name := range []string{TakeOffEvent, LandEvent, EmergencyEvent, CalibrateEvent} {
		assert.Equal(t, name, d.Event(name))
	}

	events := d.Subscribe()
	defer d.Unsubscribe(events)

	d.Calibrate()
	assert.Equal(t, 50, drone.Pending(OneShotCalibrate))

	select {
	case evt := <-events:
		assert.Equal(t, CalibrateEvent, evt.Name)
		assert.Equal(t, 50, evt.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("no calibrate event published")
	}
}
