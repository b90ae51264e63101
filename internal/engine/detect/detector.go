package detect

import (
	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"
)

// Detection thresholds. These are fixed policy values, not tunables.
const (
	// PortScanThreshold is the distinct-port count past which a source is
	// treated as a scanner.
	PortScanThreshold = 10

	// BandwidthThreshold is compared against accumulated bytes scaled by
	// 1e6 over one roll-up interval.
	BandwidthThreshold = 100.0

	// Anomaly sweep thresholds.
	PacketSpikeThreshold = 10000
	PortPatternThreshold = 20
	DataBurstBytes       = 1_000_000
	ConnectionThreshold  = 100
)

// DataBurstWindow bounds how soon after first contact a large send volume
// counts as a burst.
const DataBurstWindow = 60 // seconds

// Detector inspects one decoded record against the shared detection state
// and optionally raises an alert. Implementations must not retain the
// record or the stats reference beyond the call.
type Detector interface {
	Name() string
	Inspect(rec *model.Record, stats *state.NetworkStats) *model.Alert
}

// Pipeline runs detectors in a fixed priority order and emits at most one
// alert per packet, then performs the unconditional traffic bookkeeping.
type Pipeline struct {
	deviceID  string
	detectors []Detector
	stats     *state.NetworkStats
}

// NewPipeline assembles the standard detector ordering: blocklist first,
// then port-scan tracking, then signature matching.
func NewPipeline(deviceID string, stats *state.NetworkStats, blockedIPs []string, signatures [][]byte, suspiciousPorts []uint16) *Pipeline {
	return &Pipeline{
		deviceID: deviceID,
		detectors: []Detector{
			NewBlocklistDetector(deviceID, blockedIPs),
			NewPortScanDetector(deviceID, suspiciousPorts),
			NewSignatureDetector(deviceID, signatures),
		},
		stats: stats,
	}
}

// Evaluate runs the record through the ordered detectors, short-circuiting
// on the first alert. Bookkeeping runs regardless of the detection outcome;
// accounting must never depend on whether a packet alerted.
func (p *Pipeline) Evaluate(rec *model.Record) *model.Alert {
	var alert *model.Alert
	for _, d := range p.detectors {
		if alert = d.Inspect(rec, p.stats); alert != nil {
			break
		}
	}
	p.stats.Observe(rec)
	return alert
}

// Stats exposes the shared state for the periodic tasks and the API.
func (p *Pipeline) Stats() *state.NetworkStats {
	return p.stats
}
