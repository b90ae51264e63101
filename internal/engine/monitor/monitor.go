package monitor

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"NetSentry/internal/config"
	"NetSentry/internal/core/model"
	"NetSentry/internal/engine/detect"
	"NetSentry/internal/engine/protocol"
	"NetSentry/internal/engine/state"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// Monitor owns the capture handle, the shared detection state, and the
// alert egress channel. It drives the capture→decode→detect loop and runs
// the bandwidth roll-up and anomaly sweep as independent periodic tasks
// against the same state.
type Monitor struct {
	deviceID string
	handle   *pcap.Handle
	pipeline *detect.Pipeline

	bandwidthInterval time.Duration
	sweepInterval     time.Duration // 0 disables the periodic sweep

	alerts        chan model.Alert
	alertsClosed  atomic.Bool
	droppedAlerts atomic.Uint64

	done      chan struct{}
	captureWg sync.WaitGroup
	tickerWg  sync.WaitGroup
}

// New opens the configured capture device and assembles the detector
// pipeline. An unavailable device is fatal for the engine: it returns an
// error rather than degrading.
func New(cfg *config.Config) (*Monitor, error) {
	iface := cfg.Capture.Interface
	if iface == "" {
		devices, err := pcap.FindAllDevs()
		if err != nil {
			return nil, fmt.Errorf("failed to list capture devices: %w", err)
		}
		if len(devices) == 0 {
			return nil, fmt.Errorf("no network devices found")
		}
		iface = devices[0].Name
	}

	timeout, err := cfg.Capture.PollTimeoutDuration()
	if err != nil {
		return nil, err
	}

	promisc := cfg.Capture.Promiscuous == nil || *cfg.Capture.Promiscuous
	handle, err := pcap.OpenLive(iface, cfg.Capture.SnapLen, promisc, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", iface, err)
	}
	log.Printf("Capture opened on %s (snaplen=%d, promiscuous=%t, timeout=%s)",
		iface, cfg.Capture.SnapLen, promisc, timeout)

	m, err := newWithPipeline(cfg)
	if err != nil {
		handle.Close()
		return nil, err
	}
	m.handle = handle
	return m, nil
}

// NewOffline assembles a monitor without a capture handle. Frames are fed
// in through ProcessFrame; used by the pcap replay tool and tests.
func NewOffline(cfg *config.Config) (*Monitor, error) {
	return newWithPipeline(cfg)
}

func newWithPipeline(cfg *config.Config) (*Monitor, error) {
	signatures, err := cfg.Detection.SignatureBytes()
	if err != nil {
		return nil, err
	}

	bandwidthInterval, err := time.ParseDuration(cfg.Engine.BandwidthInterval)
	if err != nil || bandwidthInterval <= 0 {
		return nil, fmt.Errorf("invalid engine bandwidth_interval %q", cfg.Engine.BandwidthInterval)
	}
	sweepInterval, err := time.ParseDuration(cfg.Engine.SweepInterval)
	if err != nil || sweepInterval < 0 {
		return nil, fmt.Errorf("invalid engine sweep_interval %q", cfg.Engine.SweepInterval)
	}

	stats := state.NewNetworkStats()
	return &Monitor{
		deviceID:          cfg.DeviceID,
		pipeline:          detect.NewPipeline(cfg.DeviceID, stats, cfg.Detection.BlockedIPs, signatures, cfg.Detection.SuspiciousPorts),
		bandwidthInterval: bandwidthInterval,
		sweepInterval:     sweepInterval,
		alerts:            make(chan model.Alert, cfg.Engine.AlertChannelSize),
		done:              make(chan struct{}),
	}, nil
}

// Alerts is the egress channel. It is closed once Stop has drained the
// capture loop and periodic tasks, so consumers can range over it.
func (m *Monitor) Alerts() <-chan model.Alert {
	return m.alerts
}

// Stats exposes the shared detection state for the API layer.
func (m *Monitor) Stats() *state.NetworkStats {
	return m.pipeline.Stats()
}

// DroppedAlerts reports how many alerts were discarded because the egress
// channel was full.
func (m *Monitor) DroppedAlerts() uint64 {
	return m.droppedAlerts.Load()
}

// Start launches the capture loop and the periodic tasks.
func (m *Monitor) Start() {
	m.tickerWg.Add(1)
	go m.runBandwidthRollup()

	if m.sweepInterval > 0 {
		m.tickerWg.Add(1)
		go m.runAnomalySweep()
	}

	if m.handle != nil {
		m.captureWg.Add(1)
		go m.runCapture()
	}
	log.Println("Monitor started.")
}

// runCapture polls the capture handle and performs decode+detect
// synchronously per frame. It exits when the handle is closed.
func (m *Monitor) runCapture() {
	defer m.captureWg.Done()

	source := gopacket.NewPacketSource(m.handle, m.handle.LinkType())
	for packet := range source.Packets() {
		m.ProcessFrame(packet.Data())
	}
	log.Println("Capture loop exited.")
}

// ProcessFrame runs one raw frame through decode and the detector pipeline.
// Malformed or non-IPv4 frames are skipped silently.
func (m *Monitor) ProcessFrame(data []byte) {
	rec, err := protocol.Decode(data)
	if err != nil {
		return
	}
	if alert := m.pipeline.Evaluate(rec); alert != nil {
		m.emit(*alert)
	}
}

// emit hands an alert to the egress channel. A full channel drops the alert
// with a counted loss rather than stalling the capture path. Alerts raised
// after Stop has closed the channel are discarded.
func (m *Monitor) emit(alert model.Alert) {
	if m.alertsClosed.Load() {
		return
	}
	select {
	case m.alerts <- alert:
	default:
		if n := m.droppedAlerts.Add(1); n%100 == 1 {
			log.Printf("Alert channel full, %d alert(s) dropped so far.", n)
		}
	}
}

// runBandwidthRollup drains and checks the traffic accumulator on a fixed
// period. The accumulator resets every tick whether or not the threshold
// fired.
func (m *Monitor) runBandwidthRollup() {
	defer m.tickerWg.Done()
	ticker := time.NewTicker(m.bandwidthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			usage := m.pipeline.Stats().DrainBandwidth()
			if alert := detect.CheckBandwidth(m.deviceID, usage, time.Now()); alert != nil {
				m.emit(*alert)
			}
		case <-m.done:
			return
		}
	}
}

// runAnomalySweep periodically evaluates the aggregate state.
func (m *Monitor) runAnomalySweep() {
	defer m.tickerWg.Done()
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RunSweep()
		case <-m.done:
			return
		}
	}
}

// RunSweep performs one anomaly sweep over the current state snapshot and
// emits the result, if any. Also invoked on demand through the API.
func (m *Monitor) RunSweep() *model.Alert {
	alert := detect.Sweep(m.deviceID, m.pipeline.Stats().TakeSnapshot(), time.Now())
	if alert != nil {
		m.emit(*alert)
	}
	return alert
}

// Stop shuts the monitor down cleanly: the capture poll stops first, then
// the periodic tasks, and finally the egress channel is closed so consumers
// see every alert that was already accepted.
func (m *Monitor) Stop() {
	log.Println("Monitor stopping...")
	if m.handle != nil {
		m.handle.Close()
	}
	m.captureWg.Wait()

	close(m.done)
	m.tickerWg.Wait()

	m.alertsClosed.Store(true)
	close(m.alerts)
	if dropped := m.droppedAlerts.Load(); dropped > 0 {
		log.Printf("Monitor stopped. %d alert(s) were dropped due to backpressure.", dropped)
	} else {
		log.Println("Monitor stopped.")
	}
}
