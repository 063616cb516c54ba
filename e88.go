// e88.go

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
	"sync"
	"time"
)

// how long Stop waits for the control loop to finish
const stopTimeout = time.Second

// Drone holds the control state of a session with one drone and the
// transport its frames are sent over.
type Drone struct {
	cfg       Config
	transport Transport

	ctrlMu   sync.Mutex // this mutex protects the control fields
	protocol Protocol
	axes     axes
	flags    flags
	oneShots oneShotTable

	loopMu   sync.Mutex // this mutex protects the control loop fields
	loopStop chan struct{}
	loopDone chan struct{}

	stickMu   sync.Mutex
	stickChan chan StickMessage
	stickStop chan struct{}
}

// Connect validates the config and opens a UDP control session to the drone.
// Nothing is sent until Start or SendOnce is called.
func Connect(cfg Config) (*Drone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := dialUDP(cfg)
	if err != nil {
		return nil, err
	}
	return newDrone(cfg, conn), nil
}

// ConnectDefault opens a control session using DefaultConfig.
func ConnectDefault() (*Drone, error) {
	return Connect(DefaultConfig())
}

// NewDrone creates a session that writes frames to t rather than to a UDP socket.
func NewDrone(cfg Config, t Transport) (*Drone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newDrone(cfg, t), nil
}

func newDrone(cfg Config, t Transport) *Drone {
	return &Drone{
		cfg:       cfg,
		transport: t,
		protocol:  cfg.Protocol,
		axes:      neutralAxes(),
	}
}

// Config returns the configuration the session was opened with.
func (drone *Drone) Config() Config {
	return drone.cfg
}

// Protocol returns the wire format currently in use.
func (drone *Drone) Protocol() Protocol {
	drone.ctrlMu.Lock()
	defer drone.ctrlMu.Unlock()
	return drone.protocol
}

// SetProtocol switches wire format.  Pending one-shot commands carry on but
// are capped to the new protocol's repeat count.
func (drone *Drone) SetProtocol(p Protocol) error {
	if !p.valid() {
		return ErrUnknownProtocol
	}
	drone.ctrlMu.Lock()
	drone.protocol = p
	drone.ctrlMu.Unlock()
	return nil
}

// BuildPacket returns the next frame to send.
// Every call counts pending one-shot commands down by one, whether or not the
// frame is actually sent.
func (drone *Drone) BuildPacket() []byte {
	drone.ctrlMu.Lock()
	proto := drone.protocol
	fs := frameState{axes: drone.axes}
	f := drone.flags
	var legacyBits, newBits uint8
	if drone.oneShots.active() {
		legacyBits, newBits = drone.oneShots.tick(proto.maxTicks())
	}
	drone.ctrlMu.Unlock()

	if proto == ProtoNew {
		fs.flags = f.new | newBits
		fs.flags2 = f.new2
		return buildNewFrame(fs)
	}
	fs.flags = f.legacy | legacyBits
	return buildLegacyFrame(fs)
}

// SendOnce builds and sends a single frame on the caller's Goroutine.
// It may be used whether or not the control loop is running.
func (drone *Drone) SendOnce() error {
	_, err := drone.transport.Write(drone.BuildPacket())
	return err
}

// Start begins transmitting frames at the configured rate.
// It does nothing if the control loop is already running.
func (drone *Drone) Start() {
	drone.loopMu.Lock()
	defer drone.loopMu.Unlock()
	if drone.loopStop != nil {
		return
	}
	drone.loopStop = make(chan struct{})
	drone.loopDone = make(chan struct{})
	go drone.controlLoop(drone.loopStop, drone.loopDone)
}

// Stop halts the control loop and waits briefly for it to finish.
// It is safe to call at any time, any number of times.
func (drone *Drone) Stop() {
	drone.loopMu.Lock()
	defer drone.loopMu.Unlock()
	if drone.loopStop == nil {
		return
	}
	close(drone.loopStop)
	select {
	case <-drone.loopDone:
	case <-time.After(stopTimeout):
		Logf("control loop did not stop within %v", stopTimeout)
	}
	drone.loopStop = nil
	drone.loopDone = nil
}

// Running reports whether the control loop is active.
func (drone *Drone) Running() bool {
	drone.loopMu.Lock()
	defer drone.loopMu.Unlock()
	return drone.loopStop != nil
}

// Close stops the control loop and any stick listener, then closes the transport.
func (drone *Drone) Close() error {
	drone.StopStickListener()
	drone.Stop()
	return drone.transport.Close()
}

func (drone *Drone) controlLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := drone.cfg.Interval()
	Logf("control loop started, %s frames every %v", drone.Protocol(), interval)
	defer Logf("control loop stopped")

	for {
		select {
		case <-stop:
			return
		default:
		}
		// frames carry absolute state, so a lost one is simply superseded by the next
		_, _ = drone.transport.Write(drone.BuildPacket())

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

// Status is a consistent snapshot of the control state.
type Status struct {
	Protocol Protocol       `json:"protocol"`
	Roll     uint8          `json:"roll"`
	Pitch    uint8          `json:"pitch"`
	Yaw      uint8          `json:"yaw"`
	Throttle uint8          `json:"throttle"`
	Rotate   bool           `json:"rotate"`
	Headless bool           `json:"headless"`
	StayHigh bool           `json:"stay_high"`
	Pending  map[string]int `json:"pending"` // remaining frames per active one-shot command
	Running  bool           `json:"running"`
}

// Status returns a snapshot of the sticks, flags and pending one-shot commands.
func (drone *Drone) Status() Status {
	running := drone.Running()
	drone.ctrlMu.Lock()
	defer drone.ctrlMu.Unlock()
	st := Status{
		Protocol: drone.protocol,
		Roll:     drone.axes.roll,
		Pitch:    drone.axes.pitch,
		Yaw:      drone.axes.yaw,
		Throttle: drone.axes.throttle,
		Rotate:   drone.flags.legacy&lgFlagRotate != 0,
		Headless: drone.flags.legacy&lgFlagHeadless != 0,
		StayHigh: drone.flags.new2&nw2FlagStayHigh != 0,
		Pending:  make(map[string]int),
		Running:  running,
	}
	for _, cmd := range allOneShots {
		if n := drone.oneShots[cmd]; n > 0 {
			st.Pending[cmd.String()] = n
		}
	}
	return st
}
