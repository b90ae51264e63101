package detect

import (
	"bytes"
	"time"

	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/state"
)

// SignatureDetector scans each payload for the configured malware byte
// signatures. Matching is contiguous exact comparison; cost is bounded by
// the capture snaplen.
type SignatureDetector struct {
	deviceID   string
	signatures [][]byte
}

// NewSignatureDetector builds the detector from raw signature byte sequences.
func NewSignatureDetector(deviceID string, signatures [][]byte) *SignatureDetector {
	return &SignatureDetector{deviceID: deviceID, signatures: signatures}
}

func (d *SignatureDetector) Name() string { return "signature" }

func (d *SignatureDetector) Inspect(rec *model.Record, _ *state.NetworkStats) *model.Alert {
	if !d.match(rec.Payload) {
		return nil
	}
	return &model.Alert{
		DeviceID:      d.deviceID,
		Type:          model.AlertMalware,
		Severity:      model.SeverityCritical,
		Description:   "Malware signature detected",
		SourceIP:      model.StringPtr(rec.SrcIP.String()),
		DestinationIP: model.StringPtr(rec.DstIP.String()),
		Protocol:      model.StringPtr(rec.ProtocolName()),
		Timestamp:     time.Now().UTC(),
	}
}

func (d *SignatureDetector) match(payload []byte) bool {
	for _, sig := range d.signatures {
		if len(sig) > 0 && bytes.Contains(payload, sig) {
			return true
		}
	}
	return false
}
