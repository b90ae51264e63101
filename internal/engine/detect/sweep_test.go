package detect

import (
	"testing"
	"time"

	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"

	"github.com/stretchr/testify/require"
)

func TestSweepQuietStateYieldsNothing(t *testing.T) {
	require.Nil(t, Sweep("test-device", state.Snapshot{}, time.Now()))
}

func TestSweepTrafficSpike(t *testing.T) {
	now := time.Now()
	snap := state.Snapshot{
		PacketCount: PacketSpikeThreshold + 1,
		// An IP that would also qualify for the port-pattern check; the
		// spike check runs first and wins.
		Connections: map[string]state.ConnectionInfo{
			"198.51.100.3": {FirstSeen: now, PortsAccessed: make([]uint16, PortPatternThreshold+1)},
		},
	}

	alert := Sweep("test-device", snap, now)
	require.NotNil(t, alert)
	require.Equal(t, model.AlertAnomaly, alert.Type)
	require.Equal(t, model.SeverityHigh, alert.Severity)
	require.Contains(t, alert.Description, "Traffic spike")
	require.Nil(t, alert.SourceIP)
}

func TestSweepPortPattern(t *testing.T) {
	now := time.Now()
	snap := state.Snapshot{
		Connections: map[string]state.ConnectionInfo{
			"198.51.100.3": {FirstSeen: now, PortsAccessed: make([]uint16, PortPatternThreshold+1)},
		},
	}

	alert := Sweep("test-device", snap, now)
	require.NotNil(t, alert)
	require.Contains(t, alert.Description, "Unusual port access pattern")
	require.Equal(t, "198.51.100.3", *alert.SourceIP)
}

func TestSweepDataBurst(t *testing.T) {
	now := time.Now()
	snap := state.Snapshot{
		Connections: map[string]state.ConnectionInfo{
			"198.51.100.3": {
				FirstSeen: now.Add(-10 * time.Second),
				BytesSent: DataBurstBytes + 1,
			},
		},
	}

	alert := Sweep("test-device", snap, now)
	require.NotNil(t, alert)
	require.Contains(t, alert.Description, "Data burst")
}

func TestSweepDataBurstRequiresRecentFirstSeen(t *testing.T) {
	now := time.Now()
	snap := state.Snapshot{
		Connections: map[string]state.ConnectionInfo{
			"198.51.100.3": {
				FirstSeen: now.Add(-5 * time.Minute),
				BytesSent: DataBurstBytes + 1,
			},
		},
	}

	require.Nil(t, Sweep("test-device", snap, now))
}

func TestSweepConnectionCount(t *testing.T) {
	snap := state.Snapshot{ConnectionCount: ConnectionThreshold + 1}

	alert := Sweep("test-device", snap, time.Now())
	require.NotNil(t, alert)
	require.Equal(t, model.SeverityMedium, alert.Severity)
	require.Contains(t, alert.Description, "High connection count")
}

func TestCheckBandwidthThreshold(t *testing.T) {
	now := time.Now()

	require.Nil(t, CheckBandwidth("test-device", 100_000_000, now))

	alert := CheckBandwidth("test-device", 150_000_000, now)
	require.NotNil(t, alert)
	require.Equal(t, model.AlertBandwidth, alert.Type)
	require.Equal(t, model.SeverityMedium, alert.Severity)
	require.Contains(t, alert.Description, "150.00")
}
