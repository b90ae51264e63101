package registration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Request carries the enrollment details submitted to the backend.
type Request struct {
	DeviceName   string `json:"device_name"`
	Organization string `json:"organization"`
	Environment  string `json:"environment"`
	Location     string `json:"location"`
	AdminEmail   string `json:"admin_email"`
	PolicyGroup  string `json:"policy_group"`
	LicenseKey   string `json:"license_key"`
}

// Response is the backend's answer to a successful registration.
type Response struct {
	DeviceID string `json:"device_id"`
	APIKey   string `json:"api_key"`
	Status   string `json:"status"`
}

// AgentConfig is the persisted identity of a registered agent.
type AgentConfig struct {
	DeviceID         string  `json:"device_id"`
	APIKey           string  `json:"api_key"`
	RegistrationData Request `json:"registration_data"`
}

// Service registers the agent against the backend and persists the
// resulting identity.
type Service struct {
	client     *http.Client
	endpoint   string
	configPath string
}

// NewService creates a registration client for the given backend endpoint.
func NewService(endpoint, configPath string) *Service {
	return &Service{
		client:     &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		configPath: configPath,
	}
}

// Register submits the enrollment request and, on success, writes the agent
// identity to the config path.
func (s *Service) Register(req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration request: %w", err)
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("registration failed: %s", resp.Status)
	}

	var regResp Response
	if err := json.NewDecoder(resp.Body).Decode(&regResp); err != nil {
		return nil, fmt.Errorf("failed to decode registration response: %w", err)
	}

	if err := s.saveConfig(req, regResp); err != nil {
		return nil, err
	}
	return &regResp, nil
}

func (s *Service) saveConfig(req Request, resp Response) error {
	cfg := AgentConfig{
		DeviceID:         resp.DeviceID,
		APIKey:           resp.APIKey,
		RegistrationData: req,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode agent config: %w", err)
	}
	if err := os.WriteFile(s.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write agent config: %w", err)
	}
	return nil
}

// IsRegistered reports whether an agent identity exists at the given path.
func IsRegistered(configPath string) bool {
	_, err := os.Stat(configPath)
	return err == nil
}

// LoadAgentConfig reads a previously persisted agent identity.
func LoadAgentConfig(configPath string) (*AgentConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config: %w", err)
	}

	var cfg AgentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agent config: %w", err)
	}
	return &cfg, nil
}
