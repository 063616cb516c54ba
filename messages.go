// messages.go

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
	"fmt"
)

// frame delimiters, the firmware resynchronises on these so they must never
// appear in the stick or checksum positions
const (
	frameHdr = 0x66
	frameEnd = 0x99
)

const newFrameLenByte = 0x14 // 20, the second byte of every new-format frame

// frame sizes
const (
	LegacyFrameLen = 8
	NewFrameLen    = 20
)

// byte positions in a legacy frame
const (
	lgRoll     = 1
	lgPitch    = 2
	lgThrottle = 3
	lgYaw      = 4
	lgFlags    = 5
	lgChecksum = 6
)

// byte positions in a new frame, bytes 8..17 are reserved and always zero
const (
	nwRoll     = 2
	nwPitch    = 3
	nwThrottle = 4
	nwYaw      = 5
	nwFlags    = 6
	nwFlags2   = 7
	nwChecksum = 18
)

// persistent flag bits
const (
	lgFlagRotate    = 1 << 3
	lgFlagHeadless  = 1 << 4
	nwFlagRotate    = 1 << 3
	nw2FlagHeadless = 1 << 0
	nw2FlagStayHigh = 1 << 1
)

// one-shot flag bits, takeoff and land share the 'auto' bit in the new format
const (
	lgFlagTakeOff   = 0x01
	lgFlagLand      = 0x02
	lgFlagEmergency = 0x04
	lgFlagCalibrate = 0x80
	nwFlagAuto      = 0x01
	nwFlagEmergency = 0x02
	nwFlagCalibrate = 0x04
)

// Frame decoding errors
var (
	ErrFrameLength    = errors.New("frame is neither 8 nor 20 bytes")
	ErrFrameDelimiter = errors.New("frame header or footer is wrong")
	ErrFrameChecksum  = errors.New("frame checksum does not match")
)

// Frame is a decoded control frame.
// Flags2 is always zero for legacy frames.
type Frame struct {
	Protocol                   Protocol
	Roll, Pitch, Throttle, Yaw uint8
	Flags, Flags2              uint8
	Checksum                   uint8
}

// sanitize bumps a byte off either delimiter value
func sanitize(b uint8) uint8 {
	if b == frameHdr || b == frameEnd {
		return b + 1
	}
	return b
}

// checksum XORs buff[from:to] together and sanitizes the result
func checksum(buff []byte, from, to int) uint8 {
	var chk uint8
	for _, b := range buff[from:to] {
		chk ^= b
	}
	return sanitize(chk)
}

// frameState is the flag-merged snapshot that the encoders work from
type frameState struct {
	axes          axes
	flags, flags2 uint8
}

// buildLegacyFrame packs the 8-byte format.
// Note that throttle is NOT sanitized.
func buildLegacyFrame(fs frameState) []byte {
	buff := make([]byte, LegacyFrameLen)
	buff[0] = frameHdr
	buff[lgRoll] = sanitize(fs.axes.roll)
	buff[lgPitch] = sanitize(fs.axes.pitch)
	buff[lgThrottle] = fs.axes.throttle
	buff[lgYaw] = sanitize(fs.axes.yaw)
	buff[lgFlags] = fs.flags
	buff[lgChecksum] = checksum(buff, lgRoll, lgChecksum)
	buff[LegacyFrameLen-1] = frameEnd
	return buff
}

// buildNewFrame packs the 20-byte format
func buildNewFrame(fs frameState) []byte {
	buff := make([]byte, NewFrameLen)
	buff[0] = frameHdr
	buff[1] = newFrameLenByte
	buff[nwRoll] = sanitize(fs.axes.roll)
	buff[nwPitch] = sanitize(fs.axes.pitch)
	buff[nwThrottle] = fs.axes.throttle
	buff[nwYaw] = sanitize(fs.axes.yaw)
	buff[nwFlags] = fs.flags
	buff[nwFlags2] = fs.flags2
	buff[nwChecksum] = checksum(buff, nwRoll, nwChecksum)
	buff[NewFrameLen-1] = frameEnd
	return buff
}

// ParseFrame decodes a raw legacy or new control frame and checks its
// delimiters and checksum.
func ParseFrame(buff []byte) (f Frame, err error) {
	switch len(buff) {
	case LegacyFrameLen:
		if buff[0] != frameHdr || buff[LegacyFrameLen-1] != frameEnd {
			return f, ErrFrameDelimiter
		}
		f.Protocol = ProtoLegacy
		f.Roll = buff[lgRoll]
		f.Pitch = buff[lgPitch]
		f.Throttle = buff[lgThrottle]
		f.Yaw = buff[lgYaw]
		f.Flags = buff[lgFlags]
		f.Checksum = buff[lgChecksum]
		if want := checksum(buff, lgRoll, lgChecksum); want != f.Checksum {
			return f, fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrFrameChecksum, f.Checksum, want)
		}
	case NewFrameLen:
		if buff[0] != frameHdr || buff[1] != newFrameLenByte || buff[NewFrameLen-1] != frameEnd {
			return f, ErrFrameDelimiter
		}
		f.Protocol = ProtoNew
		f.Roll = buff[nwRoll]
		f.Pitch = buff[nwPitch]
		f.Throttle = buff[nwThrottle]
		f.Yaw = buff[nwYaw]
		f.Flags = buff[nwFlags]
		f.Flags2 = buff[nwFlags2]
		f.Checksum = buff[nwChecksum]
		if want := checksum(buff, nwRoll, nwChecksum); want != f.Checksum {
			return f, fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrFrameChecksum, f.Checksum, want)
		}
	default:
		return f, fmt.Errorf("%w: got %d", ErrFrameLength, len(buff))
	}
	return f, nil
}

// OneShots reports which one-shot commands are signalled in the frame.
// In a new-format frame the shared auto bit is reported as both TakeOff and Land.
func (f Frame) OneShots() (cmds []OneShot) {
	for _, cmd := range allOneShots {
		if f.Flags&oneShotBit(f.Protocol, cmd) != 0 {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Rotate reports whether the rotate flag is set.
func (f Frame) Rotate() bool {
	if f.Protocol == ProtoNew {
		return f.Flags&nwFlagRotate != 0
	}
	return f.Flags&lgFlagRotate != 0
}

// Headless reports whether headless mode is set.
func (f Frame) Headless() bool {
	if f.Protocol == ProtoNew {
		return f.Flags2&nw2FlagHeadless != 0
	}
	return f.Flags&lgFlagHeadless != 0
}

// StayHigh reports whether stay-high is set, it only exists in new frames.
func (f Frame) StayHigh() bool {
	return f.Protocol == ProtoNew && f.Flags2&nw2FlagStayHigh != 0
}

// String gives a one-line summary of the frame.
func (f Frame) String() string {
	if f.Protocol == ProtoNew {
		return fmt.Sprintf("new roll=%d pitch=%d throttle=%d yaw=%d flags=0x%02x flags2=0x%02x chk=0x%02x",
			f.Roll, f.Pitch, f.Throttle, f.Yaw, f.Flags, f.Flags2, f.Checksum)
	}
	return fmt.Sprintf("legacy roll=%d pitch=%d throttle=%d yaw=%d flags=0x%02x chk=0x%02x",
		f.Roll, f.Pitch, f.Throttle, f.Yaw, f.Flags, f.Checksum)
}
