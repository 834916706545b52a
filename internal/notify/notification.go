// Package notify delivers operator-facing notifications.
//
// The engine decides when to notify and with what payload; sinks in this
// package only move a Notification to a channel (webhook, Kafka, log).
// Dispatch is fire-and-forget from the engine's point of view: failures are
// logged and never roll back state already committed.
package notify

//go:generate mockgen -source=notification.go -destination=mocks/mocks.go -package=mocks Dispatcher

import (
	"context"
	"fmt"
	"time"

	id "ipguard/pkg/domain"
	"ipguard/pkg/platform/sentinel"
)

// Kind identifies the message template used for a notification.
type Kind string

const (
	KindInvalid         Kind = "invalid"
	KindVerified        Kind = "verified"
	KindSetIPSuccess    Kind = "set_ip_success"
	KindSetIPFailed     Kind = "set_ip_failed"
	KindRemoveIPSuccess Kind = "remove_ip_success"
	KindRemoveIPFailed  Kind = "remove_ip_failed"
	KindNotFound        Kind = "not_found_player"
	KindInvalidAddress  Kind = "invalid_ip_format"
	KindApprovalSuccess Kind = "approval_success"
	KindApprovalFailed  Kind = "approval_failed"
)

// Kinds lists every kind the catalog renders.
var Kinds = []Kind{
	KindInvalid, KindVerified,
	KindSetIPSuccess, KindSetIPFailed,
	KindRemoveIPSuccess, KindRemoveIPFailed,
	KindNotFound, KindInvalidAddress,
	KindApprovalSuccess, KindApprovalFailed,
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Action is the interactive approval offer attached to a DENY notification.
// URL is empty when link signing is disabled.
type Action struct {
	Token id.ApprovalToken `json:"token"`
	Label string           `json:"label"`
	URL   string           `json:"url,omitempty"`
}

type Notification struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Footer      string    `json:"footer,omitempty"`
	Color       int       `json:"color"`
	Fields      []Field   `json:"fields,omitempty"`
	Timestamp   time.Time `json:"timestamp"`

	Principal   id.PrincipalID `json:"principal_id"`
	DisplayName string         `json:"display_name,omitempty"`
	Address     string         `json:"address,omitempty"`

	Action *Action `json:"action,omitempty"`
}

// Dispatcher sends one notification to an operator channel.
type Dispatcher interface {
	Send(ctx context.Context, n Notification) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, n Notification) error

func (f DispatcherFunc) Send(ctx context.Context, n Notification) error { return f(ctx, n) }

// Error is a delivery failure on one sink.
type Error struct {
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Sink, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == sentinel.ErrUnavailable }
