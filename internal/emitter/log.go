package emitter

import (
	"encoding/json"
	"log"

	coremodel "NetSentry/internal/core/model"
)

// LogSink prints each alert as its JSON wire form to the process log.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Write(alert coremodel.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	log.Printf("[ALERT] %s", data)
	return nil
}

func (s *LogSink) Close() error { return nil }
