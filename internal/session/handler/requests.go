package handler

import (
	"strings"

	"ipguard/internal/session"
	id "ipguard/pkg/domain"
	strutil "ipguard/pkg/platform/strings"
	"ipguard/pkg/validation"
)

// ConnectRequest is the body of POST /sessions.
type ConnectRequest struct {
	PrincipalID string   `json:"principal_id" validate:"required,uuid"`
	DisplayName string   `json:"display_name" validate:"required,notblank,max=64"`
	Address     string   `json:"address" validate:"required,ip"`
	Elevated    bool     `json:"elevated"`
	Mode        string   `json:"mode,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func (r *ConnectRequest) Normalize() {
	if r == nil {
		return
	}
	r.PrincipalID = strings.TrimSpace(r.PrincipalID)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.Address = strings.TrimSpace(r.Address)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	r.Permissions = strutil.DedupeAndTrim(r.Permissions)
}

func (r *ConnectRequest) Validate() error {
	return validation.Validate(r)
}

// Session converts the request. Validate must have passed.
func (r *ConnectRequest) Session() session.Session {
	principal, _ := id.ParsePrincipalID(r.PrincipalID)
	return session.Session{
		Principal:   principal,
		DisplayName: r.DisplayName,
		Address:     r.Address,
		Elevated:    r.Elevated,
		Mode:        r.Mode,
		Permissions: r.Permissions,
	}
}

// UpdateRequest is the body of PUT /sessions/{id}. Omitted fields keep their
// current value.
type UpdateRequest struct {
	Elevated    *bool     `json:"elevated,omitempty"`
	Mode        *string   `json:"mode,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

func (r *UpdateRequest) Normalize() {
	if r == nil {
		return
	}
	r.Mode = strutil.TrimLowerPtr(r.Mode)
	r.Permissions = strutil.DedupeAndTrimPtr(r.Permissions)
}

func (r *UpdateRequest) apply(s *session.Session) {
	if r.Elevated != nil {
		s.Elevated = *r.Elevated
	}
	if r.Mode != nil {
		s.Mode = *r.Mode
	}
	if r.Permissions != nil {
		s.Permissions = *r.Permissions
	}
}
