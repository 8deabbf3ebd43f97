package main

import "errors"

// Command-level errors.
var (
	// ErrNoEndpoints indicates neither positional arguments nor a manifest
	// described any endpoint to wire up.
	ErrNoEndpoints = errors.New("no input or output endpoints given")

	// ErrMissingSeparator indicates positional arguments were given without
	// the "--" splitting inputs from outputs.
	ErrMissingSeparator = errors.New(`positional arguments must be split into inputs and outputs by "--"`)
)

// FormatUserError returns the top-level message printed to the user: the
// error's full message, wrapped context included, or "" for a nil error.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
