package export

import "errors"

// ErrMissingField marks a record that cannot be serialized because a
// required field is absent. The record sequence itself is left untouched.
var ErrMissingField = errors.New("event record missing required field")
