// Package domain provides type-safe identifiers shared across ipguard packages.
package domain

import (
	"github.com/google/uuid"

	dErrors "ipguard/pkg/domain-errors"
)

// PrincipalID is the stable identity of a connected principal. It is the
// canonical key for trust records; display names are presentation only.
type PrincipalID uuid.UUID

// ApprovalToken is the opaque single-use identifier embedded in an operator
// approval action.
type ApprovalToken string

// NewPrincipalID returns a random principal identifier.
func NewPrincipalID() PrincipalID { return PrincipalID(uuid.New()) }

// NewApprovalToken mints a fresh random token.
func NewApprovalToken() ApprovalToken { return ApprovalToken(uuid.NewString()) }

// ParsePrincipalID parses a principal identifier at a trust boundary.
func ParsePrincipalID(s string) (PrincipalID, error) {
	id, err := parseUUID(s, "principal ID")
	return PrincipalID(id), err
}

// ParseApprovalToken validates the textual form of an approval token.
func ParseApprovalToken(s string) (ApprovalToken, error) {
	id, err := parseUUID(s, "approval token")
	if err != nil {
		return "", err
	}
	return ApprovalToken(id.String()), nil
}

func (id PrincipalID) String() string { return uuid.UUID(id).String() }
func (id PrincipalID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (t ApprovalToken) String() string { return string(t) }
func (t ApprovalToken) IsNil() bool    { return t == "" }

// MarshalText lets PrincipalID be used as a JSON/YAML map key and value.
func (id PrincipalID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *PrincipalID) UnmarshalText(b []byte) error {
	parsed, err := ParsePrincipalID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
