package emitter

import (
	"encoding/json"
	"log"

	"NetSentry/internal/config"
	coremodel "NetSentry/internal/core/model"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes each alert, in its JSON wire form, to a NATS subject
// for the backend delivery pipeline to pick up.
type NATSSink struct {
	nc      *nats.Conn
	subject string
}

// NewNATSSink connects to the configured NATS server.
func NewNATSSink(cfg config.NATSConfig) (*NATSSink, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &NATSSink{nc: nc, subject: cfg.Subject}, nil
}

func (s *NATSSink) Write(alert coremodel.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return s.nc.Publish(s.subject, data)
}

// Close drains the connection so buffered publishes are flushed.
func (s *NATSSink) Close() error {
	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			return err
		}
		log.Println("NATS connection drained and closed.")
	}
	return nil
}
