// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access decides what a user may do with a generated document:
// whether it is locked behind payment, whether an unlock should be offered,
// and whether copy or download may proceed.
package access

import "errors"

var (
	// ErrAuthRequired is returned when an action needs a signed-in user.
	ErrAuthRequired = errors.New("access: authentication required")

	// ErrLocked is returned when a pro document has not been paid for.
	ErrLocked = errors.New("access: document is locked")
)

// Action is something a user can do with the displayed document.
type Action string

const (
	ActionView     Action = "view"
	ActionCopy     Action = "copy"
	ActionDownload Action = "download"
	ActionUnlock   Action = "unlock"
)

// IsLocked reports whether a document is held behind payment.
func IsLocked(isPro, unlocked bool) bool {
	return isPro && !unlocked
}

// CanOfferUnlock reports whether the unlock action should be offered.
func CanOfferUnlock(isPro, locked bool) bool {
	return isPro && locked
}

// RequiresAuth reports whether the action needs a signed-in user,
// independent of the document's lock state.
func RequiresAuth(a Action) bool {
	switch a {
	case ActionCopy, ActionDownload, ActionUnlock:
		return true
	}
	return false
}

// Allow checks an action against the caller's authentication and the
// document's lock state. Viewing is always allowed.
func Allow(a Action, authenticated, locked bool) error {
	if RequiresAuth(a) && !authenticated {
		return ErrAuthRequired
	}
	if locked && (a == ActionCopy || a == ActionDownload) {
		return ErrLocked
	}
	return nil
}
