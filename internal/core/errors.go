package core

import "errors"

var (
	// ErrInput covers bad command lines, bad configuration and sources that
	// cannot be opened.
	ErrInput = errors.New("input error")

	// ErrResource is returned when a classifier model is missing or invalid.
	ErrResource = errors.New("resource error")

	// ErrSinkWrite marks a failed write to an output sink. It is reported
	// but never stops the frame loop.
	ErrSinkWrite = errors.New("sink write error")
)
