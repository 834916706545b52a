package models

import (
	"strings"
	"time"

	id "ipguard/pkg/domain"
	"ipguard/pkg/validation"
)

// TrustRecord binds a principal to the last address an operator approved.
type TrustRecord struct {
	PrincipalID id.PrincipalID `json:"principal_id" yaml:"principal_id"`
	Address     string         `json:"address" yaml:"address"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// SetAddressRequest is the body of PUT /admin/trust/{principal}.
type SetAddressRequest struct {
	Address string `json:"address" validate:"required,ip"`
}

func (r *SetAddressRequest) Normalize() {
	if r == nil {
		return
	}
	r.Address = strings.TrimSpace(r.Address)
}

func (r *SetAddressRequest) Validate() error {
	return validation.Validate(r)
}
