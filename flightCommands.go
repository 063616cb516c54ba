// flightCommands.go

// This file contains the high-level flight command API

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

// Trigger starts (or restarts) a one-shot command.  Its flag is set in the
// next 20 (legacy) or 50 (new) frames, then cleared.
// There is no way to cancel a command once triggered.
func (drone *Drone) Trigger(cmd OneShot) {
	if cmd < 0 || cmd >= numOneShots {
		return
	}
	drone.ctrlMu.Lock()
	drone.oneShots.trigger(cmd, drone.protocol.maxTicks())
	drone.ctrlMu.Unlock()
}

// Pending returns the number of frames a one-shot command will still be signalled in.
func (drone *Drone) Pending(cmd OneShot) int {
	if cmd < 0 || cmd >= numOneShots {
		return 0
	}
	drone.ctrlMu.Lock()
	defer drone.ctrlMu.Unlock()
	return drone.oneShots[cmd]
}

// TakeOff sends a one-key takeoff request
func (drone *Drone) TakeOff() {
	drone.Trigger(OneShotTakeOff)
}

// Land sends a one-key land request
func (drone *Drone) Land() {
	drone.Trigger(OneShotLand)
}

// Emergency stops the motors immediately - the drone will fall!
func (drone *Drone) Emergency() {
	drone.Trigger(OneShotEmergency)
}

// Calibrate requests a gyro calibration, the drone must be level and on the ground
func (drone *Drone) Calibrate() {
	drone.Trigger(OneShotCalibrate)
}

// *** The following are 'macro' commands which are here purely
// *** to make the drone easier to use in some circumstances.
// *** Each one moves a single stick and leaves the others where they are.

// Hover simply sets the sticks to neutral - useful as a panic action!
// Note that throttle goes to idle as the sticks are not self-centring on this drone.
func (drone *Drone) Hover() {
	drone.ctrlMu.Lock()
	drone.axes = neutralAxes()
	drone.ctrlMu.Unlock()
}

func pctToStick(pct int) float64 {
	if pct <= 0 {
		return 0
	}
	if pct > 100 {
		pct = 100
	}
	return float64(pct) / 100
}

// Forward tells the drone to start moving forward at a given speed between 0 and 100
func (drone *Drone) Forward(pct int) {
	drone.SetAxes(AxesUpdate{Pitch: Val(pctToStick(pct))})
}

// Backward tells the drone to start moving Backward at a given speed between 0 and 100
func (drone *Drone) Backward(pct int) {
	drone.SetAxes(AxesUpdate{Pitch: Val(-pctToStick(pct))})
}

// Left tells the drone to start moving Left at a given speed between 0 and 100
func (drone *Drone) Left(pct int) {
	drone.SetAxes(AxesUpdate{Roll: Val(-pctToStick(pct))})
}

// Right tells the drone to start moving Right at a given speed between 0 and 100
func (drone *Drone) Right(pct int) {
	drone.SetAxes(AxesUpdate{Roll: Val(pctToStick(pct))})
}

// Throttle sets the throttle to a given level between 0 and 100
func (drone *Drone) Throttle(pct int) {
	drone.SetAxes(AxesUpdate{Throttle: Val(pctToStick(pct))})
}

// Clockwise tells the drone to start rotating Clockwise at a given speed between 0 and 100
func (drone *Drone) Clockwise(pct int) {
	drone.SetAxes(AxesUpdate{Yaw: Val(pctToStick(pct))})
}

// TurnRight is an alias for Clockwise()
func (drone *Drone) TurnRight(pct int) {
	drone.Clockwise(pct)
}

// Anticlockwise tells the drone to start rotating Anticlockwise at a given speed between 0 and 100
func (drone *Drone) Anticlockwise(pct int) {
	drone.SetAxes(AxesUpdate{Yaw: Val(-pctToStick(pct))})
}

// TurnLeft is an alias for Anticlockwise()
func (drone *Drone) TurnLeft(pct int) {
	drone.Anticlockwise(pct)
}

// CounterClockwise is an alias for Anticlockwise()
func (drone *Drone) CounterClockwise(pct int) {
	drone.Anticlockwise(pct)
}

// *** End of 'macro' commands ***
