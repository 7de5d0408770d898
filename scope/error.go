package scope

import "github.com/ardnew/bind/lang"

// Predefined errors (sentinel values).
var (
	// ErrInProgress is returned by Digest and Apply when the scope is already
	// in a digest or apply phase.
	ErrInProgress = lang.NewError("phase already in progress")
	// ErrDigestTTL is returned by Digest when watchers remain dirty after
	// the configured number of passes.
	ErrDigestTTL = lang.NewError("digest ttl exceeded")
	// ErrTask wraps failures of async tasks and post-digest callbacks. These
	// are passed to the exception handler, never returned.
	ErrTask = lang.NewError("deferred task failed")
)
