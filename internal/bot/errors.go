package bot

import "github.com/cockroachdb/errors"

// Failure classes the session distinguishes. Resolution errors are handled
// inside the event loop and never escape it; the token error surfaces from
// New before any network use.
var (
	ErrMissingToken    = errors.New("authentication token is empty")
	ErrServerNotFound  = errors.New("no joined server matches the configured name")
	ErrChannelNotFound = errors.New("no channel in the server matches the configured name")
)
