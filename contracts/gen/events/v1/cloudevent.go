package v1

import (
	"encoding/json"
	"time"
)

// CloudEvent is the inbound event shape delivered by the platform event
// channel. Delivery is at-least-once and order is not guaranteed; Time carries
// the authoritative business timestamp used for ordering, not the wall-clock
// receipt time.
type CloudEvent struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	SpecVersion string          `json:"specversion"`
	Kind        string          `json:"type"`
	Subject     string          `json:"subject"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}
