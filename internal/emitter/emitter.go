package emitter

import (
	"log"
	"sync"

	coremodel "NetSentry/internal/core/model"
	"NetSentry/internal/model"
)

// Emitter consumes alerts from the engine's egress channel and fans them
// out to the configured sinks. Critical alerts are additionally escalated
// through the notifier, when one is configured.
type Emitter struct {
	sinks    []model.Sink
	notifier model.Notifier
	wg       sync.WaitGroup
}

// New creates an emitter over the given sinks. notifier may be nil.
func New(sinks []model.Sink, notifier model.Notifier) *Emitter {
	return &Emitter{sinks: sinks, notifier: notifier}
}

// Run consumes the channel until it is closed. A failing sink never stops
// delivery to the others.
func (e *Emitter) Run(alerts <-chan coremodel.Alert) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for alert := range alerts {
			e.dispatch(alert)
		}
	}()
}

func (e *Emitter) dispatch(alert coremodel.Alert) {
	for _, sink := range e.sinks {
		if err := sink.Write(alert); err != nil {
			log.Printf("Sink error for %s alert: %v", alert.Type, err)
		}
	}

	if e.notifier != nil && alert.Severity == coremodel.SeverityCritical {
		subject := "NetSentry critical alert: " + string(alert.Type)
		if err := e.notifier.Send(subject, criticalAlertBody(alert)); err != nil {
			log.Printf("Failed to send critical alert notification: %v", err)
		}
	}
}

// Wait blocks until the alert channel has been drained and closed, then
// closes the sinks.
func (e *Emitter) Wait() {
	e.wg.Wait()
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil {
			log.Printf("Error closing sink: %v", err)
		}
	}
	log.Println("Emitter stopped.")
}

func criticalAlertBody(alert coremodel.Alert) string {
	body := "<h1>NetSentry Critical Alert</h1>" +
		"<p><b>" + string(alert.Type) + "</b>: " + alert.Description + "</p>"
	if alert.SourceIP != nil {
		body += "<p>Source IP: " + *alert.SourceIP + "</p>"
	}
	if alert.DestinationIP != nil {
		body += "<p>Destination IP: " + *alert.DestinationIP + "</p>"
	}
	body += "<p>Device: " + alert.DeviceID + ", at " + alert.Timestamp.Format("2006-01-02 15:04:05 MST") + "</p>"
	return body
}
