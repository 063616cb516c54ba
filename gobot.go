// gobot.go - lets the transmitter be used as a gobot driver

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
	"gobot.io/x/gobot"
)

// gobot event names, one per one-shot command
const (
	TakeOffEvent   = "takeoff"
	LandEvent      = "land"
	EmergencyEvent = "emergency"
	CalibrateEvent = "calibrate"
)

// GobotDriver adapts a Drone to the gobot.Driver interface so it can be
// added to a gobot.Robot.  Start and Halt switch the control loop on and off;
// they do not close the session.
type GobotDriver struct {
	gobot.Eventer
	name  string
	drone *Drone
}

// NewGobotDriver wraps an open session.
func NewGobotDriver(drone *Drone) *GobotDriver {
	d := &GobotDriver{
		Eventer: gobot.NewEventer(),
		name:    gobot.DefaultName("E88"),
		drone:   drone,
	}
	for _, cmd := range allOneShots {
		d.AddEvent(cmd.String())
	}
	return d
}

// Name returns the name of the driver
func (d *GobotDriver) Name() string { return d.name }

// SetName sets the name of the driver
func (d *GobotDriver) SetName(name string) { d.name = name }

// Connection is nil, the drone has no gobot adaptor
func (d *GobotDriver) Connection() gobot.Connection { return nil }

// Start begins transmitting
func (d *GobotDriver) Start() error {
	d.drone.Start()
	return nil
}

// Halt stops transmitting
func (d *GobotDriver) Halt() error {
	d.drone.Stop()
	return nil
}

// Drone gives access to the wrapped session for stick control.
func (d *GobotDriver) Drone() *Drone { return d.drone }

// Trigger starts a one-shot command and publishes the matching event.
func (d *GobotDriver) Trigger(cmd OneShot) {
	if cmd < 0 || cmd >= numOneShots {
		return
	}
	d.drone.Trigger(cmd)
	d.Publish(cmd.String(), d.drone.Pending(cmd))
}

// TakeOff triggers a one-key takeoff
func (d *GobotDriver) TakeOff() { d.Trigger(OneShotTakeOff) }

// Land triggers a one-key land
func (d *GobotDriver) Land() { d.Trigger(OneShotLand) }

// Emergency triggers an emergency motor stop
func (d *GobotDriver) Emergency() { d.Trigger(OneShotEmergency) }

// Calibrate triggers a gyro calibration
func (d *GobotDriver) Calibrate() { d.Trigger(OneShotCalibrate) }
