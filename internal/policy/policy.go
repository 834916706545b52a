// Package policy decides whether a connected principal may keep its session.
//
// A principal is subject to checking when any enabled predicate matches:
// elevated privilege, sensitive mode, or holding a configured permission.
// A subject principal is allowed only if its current address equals the
// trusted address on record. Missing records and storage failures deny.
package policy

import (
	"slices"
	"strings"

	"ipguard/internal/platform/config"
	id "ipguard/pkg/domain"
	strutil "ipguard/pkg/platform/strings"
)

// Predicate names one reason a principal is subject to checking.
type Predicate string

const (
	PredicateElevated      Predicate = "elevated"
	PredicateSensitiveMode Predicate = "sensitive_mode"
	PredicatePermission    Predicate = "permission"
)

type Outcome string

const (
	Allow Outcome = "allow"
	Deny  Outcome = "deny"
)

// Reason explains a Decision for logs and notifications.
type Reason string

const (
	ReasonDisabled         Reason = "checking_disabled"
	ReasonNotSubject       Reason = "not_subject"
	ReasonTrusted          Reason = "address_trusted"
	ReasonNoRecord         Reason = "no_trust_record"
	ReasonAddressMismatch  Reason = "address_mismatch"
	ReasonTrustUnavailable Reason = "trust_unavailable"
)

// Config is the read-only policy configuration.
type Config struct {
	Enabled            bool
	CheckElevated      bool
	CheckSensitiveMode bool
	SensitiveMode      string
	Permissions        []string
}

// ConfigFrom maps the loaded configuration section.
func ConfigFrom(c config.PolicyConfig) Config {
	return Config{
		Enabled:            c.Enabled,
		CheckElevated:      c.CheckElevated,
		CheckSensitiveMode: c.CheckSensitiveMode,
		SensitiveMode:      c.SensitiveMode,
		Permissions:        strutil.DedupeAndTrim(c.Permissions),
	}
}

// Attributes is what the host runtime reports about a session.
type Attributes struct {
	Principal   id.PrincipalID
	DisplayName string
	Address     string
	Elevated    bool
	Mode        string
	Permissions []string
}

// Trust is the outcome of one trust store read.
type Trust struct {
	Address string
	Found   bool
	Err     error
}

type Decision struct {
	Outcome Outcome
	Reason  Reason
	// Subject mirrors RequiresTrustCheck for the same inputs.
	Subject        bool
	Matched        []Predicate
	TrustedAddress string
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// MatchedPredicates lists the enabled predicates that apply to a. The result
// is empty when checking is disabled.
func MatchedPredicates(cfg Config, a Attributes) []Predicate {
	if !cfg.Enabled {
		return nil
	}
	var matched []Predicate
	if cfg.CheckElevated && a.Elevated {
		matched = append(matched, PredicateElevated)
	}
	if cfg.CheckSensitiveMode && cfg.SensitiveMode != "" && strings.EqualFold(a.Mode, cfg.SensitiveMode) {
		matched = append(matched, PredicateSensitiveMode)
	}
	if holdsAny(a.Permissions, cfg.Permissions) {
		matched = append(matched, PredicatePermission)
	}
	return matched
}

// RequiresTrustCheck reports whether at least one enabled predicate matches.
func RequiresTrustCheck(cfg Config, a Attributes) bool {
	return len(MatchedPredicates(cfg, a)) > 0
}

// Decide evaluates a against the trust read t. It never blocks and performs
// no I/O.
func Decide(cfg Config, a Attributes, t Trust) Decision {
	if !cfg.Enabled {
		return Decision{Outcome: Allow, Reason: ReasonDisabled}
	}

	matched := MatchedPredicates(cfg, a)
	if len(matched) == 0 {
		return Decision{Outcome: Allow, Reason: ReasonNotSubject}
	}

	d := Decision{Subject: true, Matched: matched, TrustedAddress: t.Address}
	switch {
	case t.Err != nil:
		d.Outcome, d.Reason, d.TrustedAddress = Deny, ReasonTrustUnavailable, ""
	case !t.Found:
		d.Outcome, d.Reason = Deny, ReasonNoRecord
	case t.Address != a.Address:
		d.Outcome, d.Reason = Deny, ReasonAddressMismatch
	default:
		d.Outcome, d.Reason = Allow, ReasonTrusted
	}
	return d
}

func holdsAny(held, configured []string) bool {
	for _, p := range configured {
		if p != "" && slices.Contains(held, p) {
			return true
		}
	}
	return false
}
