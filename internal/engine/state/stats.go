package state

import (
	"slices"
	"sync"
	"time"

	"NetSentry/internal/core/model"
)

// ConnectionInfo tracks the history of a single source IP. Entries are
// created when an IP is first seen as a packet source and are never evicted,
// so a source that crossed a threshold keeps re-triggering. Long-running
// deployments trade memory for that property.
type ConnectionInfo struct {
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	BytesSent     uint64    `json:"bytes_sent"`
	BytesReceived uint64    `json:"bytes_received"`
	PortsAccessed []uint16  `json:"ports_accessed"`
}

// NetworkStats is the shared detection state. It is mutated by the capture
// path and read/reset by the periodic tasks, so every access goes through
// the single mutex.
type NetworkStats struct {
	mu sync.Mutex

	bandwidthUsage  float64
	connectionCount int
	packetCount     uint64

	knownIPs         map[string]*ConnectionInfo
	portScanAttempts map[string][]uint16
}

// Snapshot is a point-in-time copy of the stats, safe to read without
// holding the lock.
type Snapshot struct {
	BandwidthUsage  float64                   `json:"bandwidth_usage"`
	ConnectionCount int                       `json:"connection_count"`
	PacketCount     uint64                    `json:"packet_count"`
	Connections     map[string]ConnectionInfo `json:"connections"`
}

// NewNetworkStats creates an empty stats instance.
func NewNetworkStats() *NetworkStats {
	return &NetworkStats{
		knownIPs:         make(map[string]*ConnectionInfo),
		portScanAttempts: make(map[string][]uint16),
	}
}

// Observe performs the unconditional per-packet bookkeeping: bandwidth and
// packet counters plus the per-IP connection history. It runs for every
// decoded record, whether or not a detector already raised an alert for it.
func (s *NetworkStats) Observe(rec *model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloadLen := uint64(len(rec.Payload))
	s.bandwidthUsage += float64(payloadLen)
	s.packetCount++

	src := rec.SrcIP.String()
	conn, ok := s.knownIPs[src]
	if !ok {
		conn = &ConnectionInfo{FirstSeen: rec.Timestamp}
		s.knownIPs[src] = conn
		s.connectionCount = len(s.knownIPs)
	}
	conn.LastSeen = rec.Timestamp
	conn.BytesSent += payloadLen
	if rec.IsTCP && !slices.Contains(conn.PortsAccessed, rec.DstPort) {
		conn.PortsAccessed = append(conn.PortsAccessed, rec.DstPort)
	}

	// Credit received bytes when the destination is an already-tracked
	// source. Entries are only ever created for sources.
	if dst := rec.DstIP.String(); dst != src {
		if peer, ok := s.knownIPs[dst]; ok {
			peer.BytesReceived += payloadLen
		}
	}
}

// RecordProbe appends a distinct destination port to the scan tracker for
// src and returns the tracked count. The tracker grows monotonically and is
// never reset, so a scanning source re-triggers on every new port past the
// threshold.
func (s *NetworkStats) RecordProbe(src string, port uint16) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ports := s.portScanAttempts[src]
	if !slices.Contains(ports, port) {
		ports = append(ports, port)
		s.portScanAttempts[src] = ports
	}
	return len(ports)
}

// DrainBandwidth returns the accumulated byte count and resets it to zero.
// The reset happens regardless of what the caller does with the value.
func (s *NetworkStats) DrainBandwidth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage := s.bandwidthUsage
	s.bandwidthUsage = 0
	return usage
}

// TakeSnapshot copies the current counters and per-IP history.
func (s *NetworkStats) TakeSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		BandwidthUsage:  s.bandwidthUsage,
		ConnectionCount: s.connectionCount,
		PacketCount:     s.packetCount,
		Connections:     make(map[string]ConnectionInfo, len(s.knownIPs)),
	}
	for ip, conn := range s.knownIPs {
		copied := *conn
		copied.PortsAccessed = append([]uint16(nil), conn.PortsAccessed...)
		snap.Connections[ip] = copied
	}
	return snap
}
