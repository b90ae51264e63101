package model

import (
	"net"
	"time"

	"github.com/google/gopacket/layers"
)

// AlertType classifies what a detector believes it has observed.
type AlertType string

const (
	AlertIntrusion          AlertType = "Intrusion"
	AlertMalware            AlertType = "Malware"
	AlertAnomaly            AlertType = "Anomaly"
	AlertPerformance        AlertType = "Performance"
	AlertResource           AlertType = "Resource"
	AlertBandwidth          AlertType = "Bandwidth"
	AlertUnauthorizedAccess AlertType = "UnauthorizedAccess"
	AlertSuspiciousTraffic  AlertType = "SuspiciousTraffic"
)

// Severity ranks how urgently an alert should be handled.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Alert is the record handed to the emitter. It is immutable once built;
// the JSON tags are the wire contract with the backend.
type Alert struct {
	DeviceID      string    `json:"device_id"`
	Type          AlertType `json:"alert_type"`
	Severity      Severity  `json:"severity"`
	Description   string    `json:"description"`
	SourceIP      *string   `json:"source_ip"`
	DestinationIP *string   `json:"destination_ip"`
	Protocol      *string   `json:"protocol"`
	Port          *uint16   `json:"port"`
	Timestamp     time.Time `json:"timestamp"`
}

// StringPtr is a convenience for filling the nullable alert fields.
func StringPtr(s string) *string { return &s }

// PortPtr is a convenience for filling the nullable port field.
func PortPtr(p uint16) *uint16 { return &p }

// Record holds the metadata extracted from a single captured frame.
// It lives for exactly one pipeline pass and is never retained.
type Record struct {
	Timestamp time.Time
	SrcIP     net.IP
	DstIP     net.IP
	Protocol  layers.IPProtocol
	DstPort   uint16 // valid only when IsTCP
	IsTCP     bool
	Payload   []byte // IPv4 payload, bounded by the capture snaplen
}

// ProtocolName returns the transport protocol as it appears on the wire,
// e.g. "TCP" or "UDP".
func (r *Record) ProtocolName() string {
	return r.Protocol.String()
}
