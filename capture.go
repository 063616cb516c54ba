// capture.go - decode control frames from a packet capture

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
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// CapturedFrame is a control frame found in a packet capture.
type CapturedFrame struct {
	Timestamp time.Time
	SrcPort   int
	DstPort   int
	Raw       []byte
	Frame     Frame
}

// ReadCapture reads a libpcap-format capture (eg. from tcpdump -w) and
// returns every UDP payload sent to dstPort that decodes as a control frame.
// A dstPort of 0 accepts any port.  Payloads that are not valid frames are skipped.
func ReadCapture(r io.Reader, dstPort int) (frames []CapturedFrame, err error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	linkType := pr.LinkType()

	for {
		data, ci, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("failed to read packet %d: %w", len(frames)+1, err)
		}

		packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp, ok := udpLayer.(*layers.UDP)
		if !ok {
			continue
		}
		if dstPort != 0 && int(udp.DstPort) != dstPort {
			continue
		}
		f, err := ParseFrame(udp.Payload)
		if err != nil {
			continue
		}
		raw := make([]byte, len(udp.Payload))
		copy(raw, udp.Payload)
		frames = append(frames, CapturedFrame{
			Timestamp: ci.Timestamp,
			SrcPort:   int(udp.SrcPort),
			DstPort:   int(udp.DstPort),
			Raw:       raw,
			Frame:     f,
		})
	}
}
