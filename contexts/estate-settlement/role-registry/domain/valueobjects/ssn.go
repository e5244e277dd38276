package valueobjects

import "strings"

// IsValidSsn reports whether the value is a well-formed national identifier:
// exactly eleven digits, nothing else.
func IsValidSsn(ssn string) bool {
	if len(ssn) != 11 {
		return false
	}
	for _, c := range ssn {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// EstateSsnFromSubject extracts the estate identifier from an event subject.
// Subjects arrive either as the bare identifier or as a resource path such as
// "person/11111111111"; the last path segment is the identifier.
func EstateSsnFromSubject(subject string) string {
	if idx := strings.LastIndex(subject, "/"); idx >= 0 {
		return subject[idx+1:]
	}
	return subject
}
