// commands.go

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
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SMerrony/e88"
	"github.com/SMerrony/e88/controlserver"
	"github.com/urfave/cli"
)

// minimum time the transmitter runs for in a timed send
const minSendDuration = 100 * time.Millisecond

// connectionFlags are shared by every command that talks to a drone
var connectionFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "Optional JSON config file, explicit flags override it",
	},
	cli.StringFlag{
		Name:  "ip",
		Value: e88.DefaultConfig().Addr,
		Usage: "Drone IP address (AP mode)",
	},
	cli.IntFlag{
		Name:  "port",
		Value: e88.DefaultConfig().Port,
		Usage: "Drone UDP port",
	},
	cli.IntFlag{
		Name:  "local-port",
		Usage: "Local UDP port to send from (default: any)",
	},
	cli.StringFlag{
		Name:  "proto",
		Value: "legacy",
		Usage: "Packet format: legacy or new",
	},
	cli.Float64Flag{
		Name:  "rate",
		Value: e88.DefaultConfig().RateHz,
		Usage: "Send rate in Hz",
	},
}

var sendFlags = []cli.Flag{
	cli.Float64Flag{Name: "roll", Usage: "Roll [-1..1] (left/right)"},
	cli.Float64Flag{Name: "pitch", Usage: "Pitch [-1..1] (forward/back)"},
	cli.Float64Flag{Name: "yaw", Usage: "Yaw [-1..1] (rotate)"},
	cli.Float64Flag{Name: "throttle", Usage: "Throttle [0..1] (up/down)"},
	cli.BoolFlag{Name: "rotate", Usage: "Enable rotate flag"},
	cli.BoolFlag{Name: "headless", Usage: "Enable headless mode"},
	cli.BoolFlag{Name: "stay-high", Usage: "Enable stay-high (new proto only)"},
	cli.BoolFlag{Name: "takeoff", Usage: "Trigger one-key takeoff"},
	cli.BoolFlag{Name: "land", Usage: "Trigger one-key land"},
	cli.BoolFlag{Name: "emergency", Usage: "Trigger emergency stop"},
	cli.BoolFlag{Name: "calibrate", Usage: "Trigger calibration"},
	cli.DurationFlag{
		Name:  "duration, d",
		Value: 500 * time.Millisecond,
		Usage: "How long to send control for",
	},
	cli.BoolFlag{Name: "once", Usage: "Send a single packet then exit"},
}

// COMMANDS lists the e88ctl sub-commands
var COMMANDS = []cli.Command{
	{
		Name:   "send",
		Usage:  "Send control packets for a while, or just once",
		Flags:  append(append([]cli.Flag{}, connectionFlags...), sendFlags...),
		Action: sendCommand,
	},
	{
		Name:  "serve",
		Usage: "Start the transmitter and the HTTP/websocket control server",
		Flags: append(append([]cli.Flag{}, connectionFlags...),
			cli.StringFlag{
				Name:  "listen, l",
				Value: "127.0.0.1:8000",
				Usage: "HTTP listening address",
			},
		),
		Action: serveCommand,
	},
	{
		Name:      "decode",
		Usage:     "Print the control frames found in a tcpdump capture",
		ArgsUsage: "<capture.pcap>",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "port, p",
				Value: e88.DefaultConfig().Port,
				Usage: "Only decode UDP packets sent to this port, 0 for any",
			},
		},
		Action: decodeCommand,
	},
}

// configFromContext loads --config if given, then applies any flags set explicitly.
// Without a config file every flag applies, defaults included.
func configFromContext(ctx *cli.Context) (e88.Config, error) {
	cfg := e88.DefaultConfig()
	path := ctx.String("config")
	if path != "" {
		var err error
		if cfg, err = e88.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	use := func(name string) bool { return path == "" || ctx.IsSet(name) }

	if use("ip") {
		cfg.Addr = ctx.String("ip")
	}
	if use("port") {
		cfg.Port = ctx.Int("port")
	}
	if ctx.IsSet("local-port") {
		cfg.LocalPort = ctx.Int("local-port")
	}
	if use("proto") {
		p, err := e88.ParseProtocol(ctx.String("proto"))
		if err != nil {
			return cfg, err
		}
		cfg.Protocol = p
	}
	if use("rate") {
		cfg.RateHz = ctx.Float64("rate")
	}
	return cfg, cfg.Validate()
}

// optAxis turns an unset float flag into an unset Axis
func optAxis(ctx *cli.Context, name string) e88.Axis {
	if !ctx.IsSet(name) {
		return e88.Axis{}
	}
	return e88.Val(ctx.Float64(name))
}

func optToggle(ctx *cli.Context, name string) e88.Toggle {
	if !ctx.Bool(name) {
		return e88.Unchanged
	}
	return e88.On
}

// applySendFlags sets sticks and modes, then triggers any one-shot commands
func applySendFlags(ctx *cli.Context, drone *e88.Drone) {
	drone.SetAxes(e88.AxesUpdate{
		Roll:     optAxis(ctx, "roll"),
		Pitch:    optAxis(ctx, "pitch"),
		Yaw:      optAxis(ctx, "yaw"),
		Throttle: optAxis(ctx, "throttle"),
	})
	drone.SetFlags(e88.FlagsUpdate{
		Rotate:   optToggle(ctx, "rotate"),
		Headless: optToggle(ctx, "headless"),
		StayHigh: optToggle(ctx, "stay-high"),
	})
	if ctx.Bool("takeoff") {
		drone.TakeOff()
	}
	if ctx.Bool("land") {
		drone.Land()
	}
	if ctx.Bool("emergency") {
		drone.Emergency()
	}
	if ctx.Bool("calibrate") {
		drone.Calibrate()
	}
}

func sendCommand(ctx *cli.Context) error {
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	drone, err := e88.Connect(cfg)
	if err != nil {
		return err
	}
	defer drone.Close()

	applySendFlags(ctx, drone)

	if ctx.Bool("once") {
		return drone.SendOnce()
	}

	duration := ctx.Duration("duration")
	if duration < minSendDuration {
		duration = minSendDuration
	}
	drone.Start()
	time.Sleep(duration)
	return nil
}

func serveCommand(ctx *cli.Context) error {
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	drone, err := e88.Connect(cfg)
	if err != nil {
		return err
	}
	defer drone.Close()

	drone.Start()

	errChan := make(chan error, 1)
	go func() {
		errChan <- controlserver.New(drone).ListenAndServe(ctx.String("listen"))
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errChan:
		return err
	case sig := <-signalChan:
		log.Printf("caught %v, landing and stopping", sig)
		drone.Hover()
		drone.Land()
		// give the land request time to go out before closing
		time.Sleep(time.Duration(drone.Pending(e88.OneShotLand)) * cfg.Interval())
		return nil
	}
}

func decodeCommand(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one capture file")
	}
	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	frames, err := e88.ReadCapture(f, ctx.Int("port"))
	for _, cf := range frames {
		fmt.Printf("%s %5d->%-5d % x  %s\n", cf.Timestamp.Format("15:04:05.000"), cf.SrcPort, cf.DstPort, cf.Raw, cf.Frame)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%d frames\n", len(frames))
	return nil
}
