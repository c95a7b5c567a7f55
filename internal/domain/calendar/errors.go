package calendar

import (
	"errors"
	"fmt"
)

// Remote store failure taxonomy. Read paths degrade through fallback tiers
// when these occur; write paths surface them wrapped in a RecordError.
var (
	ErrStoreNotConfigured = errors.New("remote attempt store not configured")
	ErrDocumentNotFound   = errors.New("remote document not found")
	ErrRemoteTimeout      = errors.New("remote store timeout")
	ErrRemoteTransport    = errors.New("remote store transport failure")
	ErrRemoteAuth         = errors.New("remote store authentication failed")
)

// RecordError reports a failed or unconfirmed attempt write. The caller must
// treat it as security-relevant: the attempt may be uncounted, and local
// state was deliberately left untouched so a retry stays possible.
type RecordError struct {
	Identity string
	Day      int
	Cause    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("failed to record attempt for day %d: %v", e.Day, e.Cause)
}

func (e *RecordError) Unwrap() error {
	return e.Cause
}
