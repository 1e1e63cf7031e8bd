package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTimezone is matched by every UnknownTimezoneError.
	ErrUnknownTimezone = errors.New("unknown timezone")

	// ErrNoSlotAvailable means the requested window has no room for the
	// meeting. Callers should report it instead of creating an event.
	ErrNoSlotAvailable = errors.New("no free slot in the requested window")
)

// UnknownTimezoneError reports a zone identifier that could not be resolved.
type UnknownTimezoneError struct {
	Zone string
	Err  error
}

func (e *UnknownTimezoneError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unknown timezone %q: %v", e.Zone, e.Err)
	}
	return fmt.Sprintf("unknown timezone %q", e.Zone)
}

func (e *UnknownTimezoneError) Is(target error) bool {
	return target == ErrUnknownTimezone
}

func (e *UnknownTimezoneError) Unwrap() error {
	return e.Err
}

// PageFetchError reports a failed page fetch while draining a paged result.
// Pages and Events describe what had been collected before the failure and
// are kept for diagnostics only.
type PageFetchError struct {
	Pages  int
	Events int
	Err    error
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("failed to fetch page %d (after %d events): %v", e.Pages+1, e.Events, e.Err)
}

func (e *PageFetchError) Unwrap() error {
	return e.Err
}

// RemoteQueryError reports a failed read query (free/busy or suggestions)
// against the remote calendar service.
type RemoteQueryError struct {
	Op  string
	Err error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("remote query %s failed: %v", e.Op, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

// RemoteWriteError reports a failed write against the remote calendar store.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote write %s failed: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// IsNoSlot reports whether err means no slot was available.
func IsNoSlot(err error) bool {
	return errors.Is(err, ErrNoSlotAvailable)
}
