package entities

import "time"

// RoleAssignment grants RoleCode to RecipientSsn over the estate identified by
// EstateSsn. HeirSsn is set only for individually delegated proxy roles and
// names the heir who delegated; for court-assigned and collective roles it is
// nil. The business key is (EstateSsn, RecipientSsn, RoleCode, HeirSsn).
type RoleAssignment struct {
	ID            int64     `json:"id"`
	EstateSsn     string    `json:"estate_ssn"`
	RecipientSsn  string    `json:"recipient_ssn"`
	HeirSsn       *string   `json:"heir_ssn,omitempty"`
	RoleCode      string    `json:"role_code"`
	Created       time.Time `json:"created"`
	Justification string    `json:"justification,omitempty"`
}

// SameGrant reports whether two assignments carry the same business key.
func (a RoleAssignment) SameGrant(other RoleAssignment) bool {
	if a.EstateSsn != other.EstateSsn || a.RecipientSsn != other.RecipientSsn || a.RoleCode != other.RoleCode {
		return false
	}
	if a.HeirSsn == nil || other.HeirSsn == nil {
		return a.HeirSsn == other.HeirSsn
	}
	return *a.HeirSsn == *other.HeirSsn
}
