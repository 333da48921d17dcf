package player

import (
	"errors"
	"strconv"
)

// resourceOpenError wraps a provider failure for one locator.
type resourceOpenError struct {
	locator string
	err     error
}

func (e resourceOpenError) Error() string {
	return "open " + e.locator + ": " + e.err.Error()
}

func (e resourceOpenError) Unwrap() error { return e.err }

// IsResourceOpenFailure reports whether err came from opening a resource.
func IsResourceOpenFailure(err error) bool {
	var target resourceOpenError
	return errors.As(err, &target)
}

// indexOutOfRangeError signals a position outside the feed.
type indexOutOfRangeError struct{ index, length int }

func (e indexOutOfRangeError) Error() string {
	return "index " + strconv.Itoa(e.index) + " out of range [0," + strconv.Itoa(e.length) + ")"
}

// IsIndexOutOfRange reports whether err indicates a position outside the feed.
func IsIndexOutOfRange(err error) bool {
	var target indexOutOfRangeError
	return errors.As(err, &target)
}

// ErrLoopStopped is returned by Loop.Do once the loop is no longer running.
var ErrLoopStopped = errors.New("player: loop stopped")

// ErrPlayerClosed is returned by Settle after Close.
var ErrPlayerClosed = errors.New("player: closed")
