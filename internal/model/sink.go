package model

import coremodel "NetSentry/internal/core/model"

// Sink receives ownership of alerts accepted into the egress channel.
type Sink interface {
	Write(alert coremodel.Alert) error
	Close() error
}
