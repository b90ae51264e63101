package detect

import (
	"net"
	"testing"
	"time"

	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/require"
)

func tcpRecord(src, dst string, port uint16, payload []byte) *model.Record {
	return &model.Record{
		Timestamp: time.Now(),
		SrcIP:     net.ParseIP(src),
		DstIP:     net.ParseIP(dst),
		Protocol:  layers.IPProtocolTCP,
		DstPort:   port,
		IsTCP:     true,
		Payload:   payload,
	}
}

func udpRecord(src, dst string, payload []byte) *model.Record {
	return &model.Record{
		Timestamp: time.Now(),
		SrcIP:     net.ParseIP(src),
		DstIP:     net.ParseIP(dst),
		Protocol:  layers.IPProtocolUDP,
		Payload:   payload,
	}
}

func newTestPipeline(blocked []string, signatures [][]byte) *Pipeline {
	return NewPipeline("test-device", state.NewNetworkStats(), blocked, signatures, []uint16{22, 445})
}

func TestBlockedIPShortCircuitsPipeline(t *testing.T) {
	p := newTestPipeline([]string{"203.0.113.7"}, [][]byte{[]byte("CMD:")})

	// Payload carries a malware signature, but the blocklist runs first.
	alert := p.Evaluate(tcpRecord("203.0.113.7", "192.168.1.10", 80, []byte("CMD:shutdown")))
	require.NotNil(t, alert)
	require.Equal(t, model.AlertUnauthorizedAccess, alert.Type)
	require.Equal(t, model.SeverityHigh, alert.Severity)
	require.Equal(t, "203.0.113.7", *alert.SourceIP)
	require.Equal(t, "192.168.1.10", *alert.DestinationIP)
}

func TestBookkeepingRunsEvenWhenAlerting(t *testing.T) {
	p := newTestPipeline([]string{"203.0.113.7"}, nil)

	alert := p.Evaluate(tcpRecord("203.0.113.7", "192.168.1.10", 80, make([]byte, 64)))
	require.NotNil(t, alert)

	// Accounting must not depend on the detection outcome.
	snap := p.Stats().TakeSnapshot()
	require.Equal(t, uint64(1), snap.PacketCount)
	require.Equal(t, float64(64), snap.BandwidthUsage)
	require.Contains(t, snap.Connections, "203.0.113.7")
}

func TestPortScanDetection(t *testing.T) {
	p := newTestPipeline(nil, nil)

	// Ten distinct ports stay under the threshold.
	for port := uint16(1); port <= 10; port++ {
		require.Nil(t, p.Evaluate(tcpRecord("198.51.100.3", "192.168.1.10", port, nil)))
	}

	// The eleventh distinct port fires, and subsequent packets keep firing.
	alert := p.Evaluate(tcpRecord("198.51.100.3", "192.168.1.10", 11, nil))
	require.NotNil(t, alert)
	require.Equal(t, model.AlertIntrusion, alert.Type)
	require.Equal(t, model.SeverityCritical, alert.Severity)
	require.Equal(t, uint16(11), *alert.Port)

	again := p.Evaluate(tcpRecord("198.51.100.3", "192.168.1.10", 12, nil))
	require.NotNil(t, again)
}

func TestPortScanRepeatPortsDoNotCount(t *testing.T) {
	p := newTestPipeline(nil, nil)

	// Many packets across only ten distinct ports never cross the threshold.
	for i := 0; i < 50; i++ {
		port := uint16(i%10 + 1)
		require.Nil(t, p.Evaluate(tcpRecord("198.51.100.3", "192.168.1.10", port, nil)))
	}
}

func TestPortScanIgnoresNonTCP(t *testing.T) {
	p := newTestPipeline(nil, nil)

	for i := 0; i < 20; i++ {
		require.Nil(t, p.Evaluate(udpRecord("198.51.100.3", "192.168.1.10", nil)))
	}
}

func TestPortScanPerSourceTracking(t *testing.T) {
	p := newTestPipeline(nil, nil)

	// Two sources probing six ports each stay under the threshold.
	for port := uint16(1); port <= 6; port++ {
		require.Nil(t, p.Evaluate(tcpRecord("198.51.100.3", "192.168.1.10", port, nil)))
		require.Nil(t, p.Evaluate(tcpRecord("198.51.100.4", "192.168.1.10", port, nil)))
	}
}

func TestSignatureMatch(t *testing.T) {
	p := newTestPipeline(nil, [][]byte{[]byte("CMD:")})

	alert := p.Evaluate(udpRecord("192.0.2.5", "192.168.1.10", []byte("...CMD:shutdown...")))
	require.NotNil(t, alert)
	require.Equal(t, model.AlertMalware, alert.Type)
	require.Equal(t, model.SeverityCritical, alert.Severity)
	require.Equal(t, "UDP", *alert.Protocol)
}

func TestSignatureByteOrderMatters(t *testing.T) {
	p := newTestPipeline(nil, [][]byte{[]byte("DMC:")})

	require.Nil(t, p.Evaluate(udpRecord("192.0.2.5", "192.168.1.10", []byte("...CMD:shutdown..."))))
}

func TestSignatureBoundary(t *testing.T) {
	sig := []byte{0x7F, 0x45, 0x4C, 0x46}
	p := newTestPipeline(nil, [][]byte{sig})

	// One byte short of the signature must not match.
	require.Nil(t, p.Evaluate(udpRecord("192.0.2.5", "192.168.1.10", sig[:len(sig)-1])))

	// The full signature at the very end of the payload must match.
	payload := append([]byte("prefix"), sig...)
	require.NotNil(t, p.Evaluate(udpRecord("192.0.2.5", "192.168.1.10", payload)))
}

func TestAtMostOneAlertPerPacket(t *testing.T) {
	// A record qualifying as both a port scan and a signature hit reports
	// only the higher-priority port scan.
	p := newTestPipeline(nil, [][]byte{[]byte("CMD:")})

	var last *model.Alert
	for port := uint16(1); port <= 11; port++ {
		last = p.Evaluate(tcpRecord("198.51.100.3", "192.168.1.10", port, []byte("CMD:run")))
	}
	require.NotNil(t, last)
	require.Equal(t, model.AlertIntrusion, last.Type)
}
