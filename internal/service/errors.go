package service

import "errors"

// Sentinel errors surfaced to callers of the scheduling service.
// Use errors.Is to check.
var (
	// ErrItemNotFound: the interaction referenced an unknown item.
	// No state was mutated.
	ErrItemNotFound = errors.New("item not found")
	// ErrUserNotFound: the interaction referenced an unknown user.
	// No state was mutated.
	ErrUserNotFound = errors.New("user not found")
	// ErrContention: the transaction kept hitting transient lock or
	// serialization conflicts and the retry budget ran out. The caller
	// may retry the whole interaction.
	ErrContention = errors.New("persistent storage contention")
)
