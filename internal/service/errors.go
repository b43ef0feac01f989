package service

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrUnresolvable marks a precondition violation: a notification
	// whose text must be synthesized but whose about reference or
	// creating user cannot be resolved. This is corrupt data or a
	// programming bug, never an expected runtime condition.
	ErrUnresolvable = errors.New("notification relations unresolvable")
)
