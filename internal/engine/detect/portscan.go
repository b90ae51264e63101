package detect

import (
	"fmt"
	"slices"
	"time"

	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"
)

// PortScanDetector tracks the distinct destination ports each source has
// probed and flags a source once it crosses PortScanThreshold. The tracker
// is never reset, so a flagged source raises again on every new port.
type PortScanDetector struct {
	deviceID        string
	suspiciousPorts []uint16
}

// NewPortScanDetector builds the detector. The suspicious-port list only
// affects the alert description, not the threshold.
func NewPortScanDetector(deviceID string, suspiciousPorts []uint16) *PortScanDetector {
	return &PortScanDetector{deviceID: deviceID, suspiciousPorts: suspiciousPorts}
}

func (d *PortScanDetector) Name() string { return "portscan" }

func (d *PortScanDetector) Inspect(rec *model.Record, stats *state.NetworkStats) *model.Alert {
	if !rec.IsTCP {
		return nil
	}

	src := rec.SrcIP.String()
	if stats.RecordProbe(src, rec.DstPort) <= PortScanThreshold {
		return nil
	}

	desc := fmt.Sprintf("Possible port scan from %s", src)
	if slices.Contains(d.suspiciousPorts, rec.DstPort) {
		desc = fmt.Sprintf("Possible port scan from %s (probing sensitive port %d)", src, rec.DstPort)
	}

	return &model.Alert{
		DeviceID:      d.deviceID,
		Type:          model.AlertIntrusion,
		Severity:      model.SeverityCritical,
		Description:   desc,
		SourceIP:      model.StringPtr(src),
		DestinationIP: model.StringPtr(rec.DstIP.String()),
		Protocol:      model.StringPtr("TCP"),
		Port:          model.PortPtr(rec.DstPort),
		Timestamp:     time.Now().UTC(),
	}
}
