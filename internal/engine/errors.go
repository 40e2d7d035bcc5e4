package engine

import "errors"

// ErrInvalidConfig marks a match configuration rejected before the first
// tick: negative duration, malformed formation, duplicate jerseys.
var ErrInvalidConfig = errors.New("invalid match configuration")
