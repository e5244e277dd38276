package errors

import "errors"

var (
	ErrInvalidEstateSsn    = errors.New("invalid estate ssn")
	ErrInvalidRecipientSsn = errors.New("invalid recipient ssn")
	ErrInvalidHeirSsn      = errors.New("invalid heir ssn")
	ErrInvalidRoleCode     = errors.New("role code outside court namespace")
	ErrUnknownEventKind    = errors.New("unknown event kind")
	ErrMissingEventPayload = errors.New("missing event payload")
	ErrNotProbateHolder    = errors.New("granting heir does not hold probate role")
	ErrDelegationNotFound  = errors.New("delegation not found")
	ErrRoleConflict        = errors.New("role assignment already exists")
	ErrLockTimeout         = errors.New("event cursor lock timeout")
)
