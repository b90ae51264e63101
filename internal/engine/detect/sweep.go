package detect

import (
	"fmt"
	"time"

	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"
)

// Sweep evaluates the aggregate detection state independent of any single
// packet. Checks run in a fixed order and only the first match is reported:
// traffic spike, per-IP port pattern, per-IP data burst, connection count.
// The per-IP checks iterate in map order; when several IPs qualify, which
// one is reported is unspecified.
func Sweep(deviceID string, snap state.Snapshot, now time.Time) *model.Alert {
	if snap.PacketCount > PacketSpikeThreshold {
		return &model.Alert{
			DeviceID:    deviceID,
			Type:        model.AlertAnomaly,
			Severity:    model.SeverityHigh,
			Description: fmt.Sprintf("Traffic spike detected: %d packets/min", snap.PacketCount),
			Timestamp:   now.UTC(),
		}
	}

	for ip, conn := range snap.Connections {
		if len(conn.PortsAccessed) > PortPatternThreshold {
			return &model.Alert{
				DeviceID:    deviceID,
				Type:        model.AlertAnomaly,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("Unusual port access pattern from IP: %s", ip),
				SourceIP:    model.StringPtr(ip),
				Timestamp:   now.UTC(),
			}
		}
	}

	for ip, conn := range snap.Connections {
		if conn.BytesSent > DataBurstBytes && now.Sub(conn.FirstSeen) < DataBurstWindow*time.Second {
			return &model.Alert{
				DeviceID:    deviceID,
				Type:        model.AlertAnomaly,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("Data burst from IP: %s (%d bytes)", ip, conn.BytesSent),
				SourceIP:    model.StringPtr(ip),
				Timestamp:   now.UTC(),
			}
		}
	}

	if snap.ConnectionCount > ConnectionThreshold {
		return &model.Alert{
			DeviceID:    deviceID,
			Type:        model.AlertAnomaly,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("High connection count: %d", snap.ConnectionCount),
			Timestamp:   now.UTC(),
		}
	}

	return nil
}

// CheckBandwidth implements the roll-up policy: the accumulated byte count
// scaled by 1e6 is compared against a flat threshold. The caller is expected
// to have already drained (and thereby reset) the accumulator. The metric is
// deliberately not a normalized rate.
func CheckBandwidth(deviceID string, accumulatedBytes float64, now time.Time) *model.Alert {
	usage := accumulatedBytes / 1_000_000
	if usage <= BandwidthThreshold {
		return nil
	}
	return &model.Alert{
		DeviceID:    deviceID,
		Type:        model.AlertBandwidth,
		Severity:    model.SeverityMedium,
		Description: fmt.Sprintf("High bandwidth usage: %.2f Mbps", usage),
		Timestamp:   now.UTC(),
	}
}
