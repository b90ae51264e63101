package detect

import (
	"fmt"
	"time"

	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"
)

// BlocklistDetector flags any traffic whose source is on the static
// blocklist, independent of stateful history.
type BlocklistDetector struct {
	deviceID string
	blocked  map[string]struct{}
}

// NewBlocklistDetector builds the detector from the configured IP strings.
func NewBlocklistDetector(deviceID string, blockedIPs []string) *BlocklistDetector {
	blocked := make(map[string]struct{}, len(blockedIPs))
	for _, ip := range blockedIPs {
		blocked[ip] = struct{}{}
	}
	return &BlocklistDetector{deviceID: deviceID, blocked: blocked}
}

func (d *BlocklistDetector) Name() string { return "blocklist" }

func (d *BlocklistDetector) Inspect(rec *model.Record, _ *state.NetworkStats) *model.Alert {
	src := rec.SrcIP.String()
	if _, hit := d.blocked[src]; !hit {
		return nil
	}
	return &model.Alert{
		DeviceID:      d.deviceID,
		Type:          model.AlertUnauthorizedAccess,
		Severity:      model.SeverityHigh,
		Description:   fmt.Sprintf("Traffic from blocked IP: %s", src),
		SourceIP:      model.StringPtr(src),
		DestinationIP: model.StringPtr(rec.DstIP.String()),
		Protocol:      model.StringPtr(rec.ProtocolName()),
		Timestamp:     time.Now().UTC(),
	}
}
