package protocol

import (
	"NetSentry/internal/core/model"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Decode parses a raw link-layer frame and extracts the fields the detector
// pipeline needs. Non-IPv4 or malformed frames return an error; callers are
// expected to skip them silently. Adversarial input must never panic here.
func Decode(data []byte) (*model.Record, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	rec := &model.Record{
		Timestamp: time.Now(), // Overwritten by capture metadata when available
	}
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		rec.Timestamp = meta.Timestamp
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ipLayer, ok := l.(*layers.IPv4)
	if !ok {
		return nil, fmt.Errorf("unexpected IPv4 layer type %T", l)
	}

	rec.SrcIP = ipLayer.SrcIP
	rec.DstIP = ipLayer.DstIP
	rec.Protocol = ipLayer.Protocol
	rec.Payload = ipLayer.Payload

	// Only TCP contributes a destination port; every other transport yields
	// a record without one.
	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		if tcpLayer, ok := l.(*layers.TCP); ok {
			rec.DstPort = uint16(tcpLayer.DstPort)
			rec.IsTCP = true
		}
	}

	return rec, nil
}
