package cli

import (
	"errors"
	"fmt"
	"io"
)

// alertedError marks an error the user has already been told about through
// a coordinator alert
type alertedError struct {
	err error
}

func (e *alertedError) Error() string { return e.err.Error() }

func (e *alertedError) Unwrap() error { return e.err }

func alerted(err error) error {
	if err == nil {
		return nil
	}
	return &alertedError{err: err}
}

// IsAlerted reports whether err was already shown to the user as an alert
func IsAlerted(err error) bool {
	var a *alertedError
	return errors.As(err, &a)
}

// ReportError prints err unless an alert already described it
func ReportError(w io.Writer, err error) {
	if err == nil || IsAlerted(err) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
