package policy

import (
	"time"

	"linkvault/internal/model"
)

// Package policy decides whether an access attempt against a vault entry is
// permitted. Evaluate is a pure function over the entry snapshot; it performs
// no I/O and holds no state, so the same snapshot always yields the same
// decision. The password comparator is injected to keep it that way.

// Code classifies the outcome of a policy evaluation.
type Code string

const (
	Allowed          Code = "allowed"
	Expired          Code = "expired"
	AlreadyConsumed  Code = "already_consumed"
	LimitReached     Code = "limit_reached"
	PasswordRequired Code = "password_required"
	PasswordInvalid  Code = "password_invalid"
)

// Effects describe the state transition an allowed access must apply: which
// counter to advance and whether this access consumes a one-time entry.
type Effects struct {
	Operation    model.Operation
	MarkConsumed bool
}

// Decision is the result of evaluating an access attempt. Effects is only
// meaningful when Code is Allowed.
type Decision struct {
	Code    Code
	Effects Effects
}

// Matcher reports whether a presented password matches a stored hash.
type Matcher func(hash, password string) bool

// Evaluate runs the access checks in fixed order: expiry, one-time
// consumption, the counter limit for the requested operation, then the
// password challenge. Expiry is terminal and must short-circuit so the caller
// can purge; the limit check deliberately precedes the password challenge to
// match the original product behavior for exhausted protected links.
func Evaluate(e *model.VaultEntry, now time.Time, password string, op model.Operation, matches Matcher) Decision {
	if now.After(e.ExpiresAt) {
		return Decision{Code: Expired}
	}

	if e.OneTime && e.ConsumedAt != nil {
		return Decision{Code: AlreadyConsumed}
	}

	switch op {
	case model.OperationView:
		if e.MaxViews != nil && e.ViewCount >= *e.MaxViews {
			return Decision{Code: LimitReached}
		}
	case model.OperationDownload:
		if e.MaxDownloads != nil && e.DownloadCount >= *e.MaxDownloads {
			return Decision{Code: LimitReached}
		}
	}

	if e.RequiresPassword() {
		if password == "" {
			return Decision{Code: PasswordRequired}
		}
		if !matches(e.PasswordHash, password) {
			return Decision{Code: PasswordInvalid}
		}
	}

	return Decision{
		Code:    Allowed,
		Effects: effectsFor(e, op),
	}
}

// effectsFor computes the counter and consumption transition for a permitted
// access. Viewing a file entry is a metadata peek and does not consume a
// one-time link; the download does. Text entries are consumed by the view
// itself.
func effectsFor(e *model.VaultEntry, op model.Operation) Effects {
	consumes := e.OneTime && e.ConsumedAt == nil &&
		(op == model.OperationDownload || e.Kind == model.KindText)
	return Effects{
		Operation:    op,
		MarkConsumed: consumes,
	}
}
