// flags.go

// This file contains the persistent mode flags and the one-shot command table

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
	"strings"
)

// Toggle is an optional flag setting, the zero Toggle leaves a flag unchanged.
type Toggle int8

// Toggle values...
const (
	Unchanged Toggle = iota
	On
	Off
)

// ToggleOf converts a bool to On or Off.
func ToggleOf(b bool) Toggle {
	if b {
		return On
	}
	return Off
}

// FlagsUpdate is a partial update of the persistent mode flags.
// StayHigh only exists in the new protocol, Headless is encoded differently
// in each protocol, both are kept for both so that switching protocol
// preserves the mode.
type FlagsUpdate struct {
	Rotate, Headless, StayHigh Toggle
}

// flags holds the persistent flag bytes for every protocol variant
type flags struct {
	legacy, new, new2 uint8
}

func setBit(v, mask uint8, t Toggle) uint8 {
	switch t {
	case On:
		return v | mask
	case Off:
		return v &^ mask
	}
	return v
}

func (f *flags) apply(u FlagsUpdate) {
	f.legacy = setBit(f.legacy, lgFlagRotate, u.Rotate)
	f.new = setBit(f.new, nwFlagRotate, u.Rotate)
	f.legacy = setBit(f.legacy, lgFlagHeadless, u.Headless)
	f.new2 = setBit(f.new2, nw2FlagHeadless, u.Headless)
	f.new2 = setBit(f.new2, nw2FlagStayHigh, u.StayHigh)
}

// SetFlags applies a partial update of the persistent mode flags.
func (drone *Drone) SetFlags(u FlagsUpdate) {
	drone.ctrlMu.Lock()
	drone.flags.apply(u)
	drone.ctrlMu.Unlock()
}

// OneShot is a command that is signalled by setting a flag bit in a bounded
// number of consecutive frames.
type OneShot int

// One-shot commands...
const (
	OneShotTakeOff OneShot = iota
	OneShotLand
	OneShotEmergency
	OneShotCalibrate
	numOneShots
)

var allOneShots = [numOneShots]OneShot{OneShotTakeOff, OneShotLand, OneShotEmergency, OneShotCalibrate}

var oneShotNames = [numOneShots]string{"takeoff", "land", "emergency", "calibrate"}

func (cmd OneShot) String() string {
	if cmd < 0 || cmd >= numOneShots {
		return fmt.Sprintf("OneShot(%d)", int(cmd))
	}
	return oneShotNames[cmd]
}

// ParseOneShot accepts the lower-case command names, eg. "takeoff".
func ParseOneShot(s string) (OneShot, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, cmd := range allOneShots {
		if oneShotNames[cmd] == s {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown one-shot command %q", s)
}

// oneShotBit gives the flag bit a command sets in the given protocol
func oneShotBit(p Protocol, cmd OneShot) uint8 {
	if p == ProtoNew {
		switch cmd {
		case OneShotTakeOff, OneShotLand:
			return nwFlagAuto
		case OneShotEmergency:
			return nwFlagEmergency
		case OneShotCalibrate:
			return nwFlagCalibrate
		}
		return 0
	}
	switch cmd {
	case OneShotTakeOff:
		return lgFlagTakeOff
	case OneShotLand:
		return lgFlagLand
	case OneShotEmergency:
		return lgFlagEmergency
	case OneShotCalibrate:
		return lgFlagCalibrate
	}
	return 0
}

// oneShotTable holds the remaining frame count of each command, 0 is inactive
type oneShotTable [numOneShots]int

// trigger (re)starts a command, re-triggering resets rather than stacks
func (t *oneShotTable) trigger(cmd OneShot, ticks int) {
	t[cmd] = ticks
}

func (t *oneShotTable) active() bool {
	for _, n := range t {
		if n > 0 {
			return true
		}
	}
	return false
}

// tick returns the flag bits of every active command for both protocols and
// counts each of them down by one frame.  Counts are capped at limit, so a
// protocol switch never leaves a command running longer than the new
// protocol allows.
func (t *oneShotTable) tick(limit int) (legacyBits, newBits uint8) {
	for _, cmd := range allOneShots {
		if t[cmd] <= 0 {
			continue
		}
		legacyBits |= oneShotBit(ProtoLegacy, cmd)
		newBits |= oneShotBit(ProtoNew, cmd)
		remaining := t[cmd] - 1
		if remaining > limit {
			remaining = limit
		}
		t[cmd] = remaining
	}
	return legacyBits, newBits
}
