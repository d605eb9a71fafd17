package review

import "errors"

// ErrMalformedEvent indicates an event violates its per-variant shape
// invariant (e.g. a LINK step missing linkedAyahId, or a negative
// duration).
var ErrMalformedEvent = errors.New("review: malformed event")
