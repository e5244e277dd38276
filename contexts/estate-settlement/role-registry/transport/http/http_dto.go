package httptransport

import "time"

// PipRequest is the policy-information lookup body used by the decision point.
type PipRequest struct {
	EstateSsn    string `json:"estate_ssn"`
	RecipientSsn string `json:"recipient_ssn,omitempty"`
}

// RoleAssignmentDTO describes one stored assignment with its read-time
// restriction state.
type RoleAssignmentDTO struct {
	EstateSsn    string    `json:"estate_ssn"`
	RecipientSsn string    `json:"recipient_ssn"`
	RoleCode     string    `json:"role_code"`
	HeirSsn      *string   `json:"heir_ssn,omitempty"`
	Created      time.Time `json:"created"`
	Restricted   bool      `json:"restricted"`
}

type PipResponse struct {
	EstateSsn       string              `json:"estate_ssn"`
	RoleAssignments []RoleAssignmentDTO `json:"role_assignments"`
}

// ExternalAuthorizationRequest is the lookup body for callers outside the
// estate platform. Recipient is mandatory here.
type ExternalAuthorizationRequest struct {
	EstateSsn    string `json:"estate_ssn"`
	RecipientSsn string `json:"recipient_ssn"`
}

type ExternalAuthorizationResponse struct {
	EstateSsn       string              `json:"estate_ssn"`
	RoleAssignments []RoleAssignmentDTO `json:"role_assignments"`
}

// CreateDelegationRequest grants an individual proxy from an heir to a chosen
// recipient.
type CreateDelegationRequest struct {
	EstateSsn     string `json:"estate_ssn"`
	HeirSsn       string `json:"heir_ssn"`
	RecipientSsn  string `json:"recipient_ssn"`
	Justification string `json:"justification,omitempty"`
}

// DeleteDelegationRequest withdraws a previously granted individual proxy.
type DeleteDelegationRequest struct {
	EstateSsn    string `json:"estate_ssn"`
	HeirSsn      string `json:"heir_ssn"`
	RecipientSsn string `json:"recipient_ssn"`
}

type DelegationResponse struct {
	Status string `json:"status"`
}

// EventReceiptResponse acknowledges an inbound case event.
type EventReceiptResponse struct {
	Outcome   string `json:"outcome"`
	EventID   string `json:"event_id"`
	EstateSsn string `json:"estate_ssn,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
