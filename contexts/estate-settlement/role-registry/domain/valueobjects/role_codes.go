package valueobjects

import "strings"

// RoleCodes carries the role-code namespace shared with the court system and
// the delegation apps. The values are configuration, not logic: tests and
// non-production environments inject their own namespace.
type RoleCodes struct {
	// CourtPrefix is the namespace reserved for roles populated directly from
	// court case data. The heir list in a case event is authoritative for this
	// namespace and only this namespace.
	CourtPrefix string
	// Probate marks a recipient as holding the estate's primary settlement
	// authority ("bevilling"). Must itself be inside CourtPrefix.
	Probate string
	// Formuesfullmakt is the pre-probate asset-management grant, inside
	// CourtPrefix.
	Formuesfullmakt string
	// IndividualProxy is a three-party grant: HeirSsn delegated their share of
	// settlement authority to RecipientSsn. Outside CourtPrefix.
	IndividualProxy string
	// CollectiveProxy is derived, never delegated directly: granted when every
	// probate holder's authority is delegated to (or held by) one recipient.
	CollectiveProxy string
}

// DefaultRoleCodes returns the production namespace.
func DefaultRoleCodes() RoleCodes {
	return RoleCodes{
		CourtPrefix:     "urn:domstolene:",
		Probate:         "urn:domstolene:skifteattest",
		Formuesfullmakt: "urn:domstolene:formuesfullmakt",
		IndividualProxy: "urn:digitaltdodsbo:skiftefullmakt:individuell",
		CollectiveProxy: "urn:digitaltdodsbo:skiftefullmakt:kollektiv",
	}
}

// IsCourtRole reports whether the code belongs to the court namespace.
func (c RoleCodes) IsCourtRole(roleCode string) bool {
	return strings.HasPrefix(roleCode, c.CourtPrefix)
}

// IsProxyRole reports whether the code is one of the two proxy roles.
func (c RoleCodes) IsProxyRole(roleCode string) bool {
	return roleCode == c.IndividualProxy || roleCode == c.CollectiveProxy
}
