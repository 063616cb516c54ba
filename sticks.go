// sticks.go

// This file contains the stick (axis) encoding and the stick-update API

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
	"errors"
	"math"
	"time"
)

// wire values for the sticks at rest
const (
	axisCentre   = 128
	throttleIdle = 0
)

// axes holds the wire values of the four channels
type axes struct {
	roll, pitch, yaw, throttle uint8
}

func neutralAxes() axes {
	return axes{roll: axisCentre, pitch: axisCentre, yaw: axisCentre, throttle: throttleIdle}
}

// Axis is an optional stick value, the zero Axis leaves a channel unchanged.
type Axis struct {
	set bool
	v   float64
}

// Val returns an Axis that sets a channel to v.
func Val(v float64) Axis {
	return Axis{set: true, v: v}
}

// IsSet reports whether the Axis carries a value.
func (a Axis) IsSet() bool { return a.set }

// Value returns the carried value, 0 if unset.
func (a Axis) Value() float64 { return a.v }

// AxesUpdate is a partial update of the sticks.
// Normally values are stick positions: -1.0 to +1.0 for roll, pitch and yaw,
// 0.0 to 1.0 for throttle.  If Raw is set they are wire bytes instead.
type AxesUpdate struct {
	Roll, Pitch, Yaw, Throttle Axis
	Raw                        bool
}

// NormalizeCentered maps a stick position in -1..+1 to a wire byte, 0 => 128.
// Out of range input is clamped.
func NormalizeCentered(v float64) uint8 {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(-1, math.Min(1, v))
	return uint8(math.RoundToEven((v + 1.0) * 127.5))
}

// NormalizeThrottle maps a throttle position in 0..1 to a wire byte.
// Out of range input is clamped.
func NormalizeThrottle(v float64) uint8 {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(0, math.Min(1, v))
	return uint8(math.RoundToEven(v * 255.0))
}

func rawAxis(v float64) uint8 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return uint8(int64(v) & 0xff)
}

func (a *axes) apply(u AxesUpdate) {
	centred := NormalizeCentered
	throttle := NormalizeThrottle
	if u.Raw {
		centred, throttle = rawAxis, rawAxis
	}
	if u.Roll.set {
		a.roll = centred(u.Roll.v)
	}
	if u.Pitch.set {
		a.pitch = centred(u.Pitch.v)
	}
	if u.Yaw.set {
		a.yaw = centred(u.Yaw.v)
	}
	if u.Throttle.set {
		a.throttle = throttle(u.Throttle.v)
	}
}

// SetAxes applies a partial stick update, channels without a value are left alone.
func (drone *Drone) SetAxes(u AxesUpdate) {
	drone.ctrlMu.Lock()
	drone.axes.apply(u)
	drone.ctrlMu.Unlock()
}

// StickMessage holds a complete set of normalized stick positions.
// Roll, Pitch and Yaw range from -1.0 to +1.0, Throttle from 0.0 to 1.0.
type StickMessage struct {
	Roll, Pitch, Yaw, Throttle float64
}

// UpdateSticks does a one-off update of all four sticks
func (drone *Drone) UpdateSticks(sm StickMessage) {
	drone.SetAxes(AxesUpdate{
		Roll:     Val(sm.Roll),
		Pitch:    Val(sm.Pitch),
		Yaw:      Val(sm.Yaw),
		Throttle: Val(sm.Throttle),
	})
}

// StartStickListener starts a Goroutine which listens for StickMessages on a channel
// and applies them to the drone.
// If idle is non-zero the sticks are returned to neutral once no message
// has arrived for that long after the last one.
func (drone *Drone) StartStickListener(idle time.Duration) (chan<- StickMessage, error) {
	drone.stickMu.Lock()
	defer drone.stickMu.Unlock()
	if drone.stickChan != nil {
		return nil, errors.New("cannot start another StickListener, already one running")
	}
	drone.stickChan = make(chan StickMessage, 10)
	drone.stickStop = make(chan struct{})
	go drone.stickListener(drone.stickChan, drone.stickStop, idle)
	Logf("stick listener started (idle recentre %v)", idle)
	return drone.stickChan, nil
}

// StopStickListener stops any running stick listener.
// The channel returned by StartStickListener must not be used afterwards.
func (drone *Drone) StopStickListener() {
	drone.stickMu.Lock()
	defer drone.stickMu.Unlock()
	if drone.stickStop == nil {
		return
	}
	close(drone.stickStop)
	drone.stickChan = nil
	drone.stickStop = nil
}

func (drone *Drone) stickListener(sc <-chan StickMessage, stop <-chan struct{}, idle time.Duration) {
	var timer *time.Timer
	var timeout <-chan time.Time // nil until a message arrives, and again after each recentre
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-stop:
			Logf("stick listener stopped")
			return
		case sm := <-sc:
			drone.UpdateSticks(sm)
			if idle <= 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(idle)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(idle)
			}
			timeout = timer.C
		case <-timeout:
			drone.Hover()
			timeout = nil
		}
	}
}
