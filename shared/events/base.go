package events

import (
	"encoding/json"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// NewIntegrationEvent serializa data y arma el sobre con la hora actual en UTC.
func NewIntegrationEvent(eventType string, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}
