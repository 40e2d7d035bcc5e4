package possession

import "errors"

// ErrInvariant marks a possession state-machine violation: a second open
// episode or an action outside any episode. It indicates a programming
// error, so callers must abort the match instead of recovering.
var ErrInvariant = errors.New("possession invariant violated")
