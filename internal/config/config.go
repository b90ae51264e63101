package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CaptureConfig holds the libpcap capture parameters.
type CaptureConfig struct {
	Interface   string `yaml:"interface"` // empty selects the first available device
	SnapLen     int32  `yaml:"snaplen"`
	Promiscuous *bool  `yaml:"promiscuous"` // on unless the file says otherwise
	PollTimeout string `yaml:"poll_timeout"`
}

// DetectionConfig holds the static threat data consumed at startup.
// None of it is mutable at runtime.
type DetectionConfig struct {
	BlockedIPs      []string `yaml:"blocked_ips"`
	Signatures      []string `yaml:"signatures"` // "hex:<bytes>" or a literal string
	SuspiciousPorts []uint16 `yaml:"suspicious_ports"`
}

// EngineConfig holds scheduling parameters for the monitor.
type EngineConfig struct {
	AlertChannelSize  int    `yaml:"alert_channel_size"`
	BandwidthInterval string `yaml:"bandwidth_interval"`
	SweepInterval     string `yaml:"sweep_interval"` // "0" disables the periodic sweep
}

// NATSConfig configures the alert publisher sink.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig configures the alert archive sink.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SMTPConfig configures email escalation of critical alerts.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"` // comma-separated recipients
}

// EmitterConfig groups the alert sinks.
type EmitterConfig struct {
	LogAlerts  bool             `yaml:"log_alerts"`
	SpoolPath  string           `yaml:"spool_path"` // empty disables the JSONL file sink
	NATS       NATSConfig       `yaml:"nats"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// APIConfig configures the embedded HTTP API.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// RegistrationConfig configures device enrollment against the backend.
type RegistrationConfig struct {
	Endpoint   string `yaml:"endpoint"`
	ConfigPath string `yaml:"config_path"` // where agent_config.json lives
}

// Config is the top-level configuration struct for the agent.
type Config struct {
	DeviceID     string             `yaml:"device_id"`
	Capture      CaptureConfig      `yaml:"capture"`
	Detection    DetectionConfig    `yaml:"detection"`
	Engine       EngineConfig       `yaml:"engine"`
	Emitter      EmitterConfig      `yaml:"emitter"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	API          APIConfig          `yaml:"api"`
	Registration RegistrationConfig `yaml:"registration"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in the capture and engine parameters the file left out.
func (c *Config) ApplyDefaults() {
	if c.Capture.SnapLen <= 0 {
		c.Capture.SnapLen = 5000
	}
	if c.Capture.PollTimeout == "" {
		c.Capture.PollTimeout = "100ms"
	}
	if c.Capture.Promiscuous == nil {
		promisc := true
		c.Capture.Promiscuous = &promisc
	}
	if c.Engine.AlertChannelSize <= 0 {
		c.Engine.AlertChannelSize = 1024
	}
	if c.Engine.BandwidthInterval == "" {
		c.Engine.BandwidthInterval = "60s"
	}
	if c.Engine.SweepInterval == "" {
		c.Engine.SweepInterval = "30s"
	}
	if len(c.Detection.SuspiciousPorts) == 0 {
		// Common attack ports
		c.Detection.SuspiciousPorts = []uint16{21, 22, 23, 445, 3389}
	}
	if c.Registration.ConfigPath == "" {
		c.Registration.ConfigPath = "agent_config.json"
	}
}

// PollTimeoutDuration parses the capture poll timeout.
func (c *CaptureConfig) PollTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.PollTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid capture poll_timeout: %w", err)
	}
	return d, nil
}

// SignatureBytes decodes the configured malware signatures. A signature is
// either a literal string or hex bytes behind a "hex:" prefix. An empty list
// falls back to the built-in set.
func (c *DetectionConfig) SignatureBytes() ([][]byte, error) {
	if len(c.Signatures) == 0 {
		return DefaultSignatures(), nil
	}

	sigs := make([][]byte, 0, len(c.Signatures))
	for _, s := range c.Signatures {
		if encoded, ok := strings.CutPrefix(s, "hex:"); ok {
			b, err := hex.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("invalid hex signature %q: %w", s, err)
			}
			sigs = append(sigs, b)
			continue
		}
		sigs = append(sigs, []byte(s))
	}
	return sigs, nil
}

// DefaultSignatures returns the built-in malware signature set.
func DefaultSignatures() [][]byte {
	return [][]byte{
		// Executable headers
		{0x4D, 0x5A},             // DOS MZ
		{0x7F, 0x45, 0x4C, 0x46}, // ELF

		// Known malicious patterns
		[]byte("http://"),
		[]byte("ws2_"),

		// Ransomware extensions
		[]byte(".encrypt"),
		[]byte(".locked"),

		// Botnet command prefixes
		[]byte("CMD:"),
		[]byte("BOT:"),
	}
}
