package entities

import "time"

// EventCursor is the per-(estate, event kind) watermark used to detect and
// discard duplicate or out-of-order case events. A zero LastProcessed means no
// event of that kind has ever been accepted for the estate.
type EventCursor struct {
	EstateSsn     string    `json:"estate_ssn"`
	EventKind     string    `json:"event_kind"`
	LastProcessed time.Time `json:"last_processed"`
}

// IsStale reports whether an event with the given business timestamp must be
// discarded. The guard is non-strict: an event carrying exactly the watermark
// timestamp is treated as already processed.
func (c EventCursor) IsStale(eventTime time.Time) bool {
	return !c.LastProcessed.IsZero() && !eventTime.After(c.LastProcessed)
}
