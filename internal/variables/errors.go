package variables

import (
	"fmt"
	"strings"
)

// ConfigReadError is returned when the variables file is missing, unreadable or malformed.
type ConfigReadError struct {
	Path string
	Err  error
}

func (e *ConfigReadError) Error() string {
	return fmt.Sprintf("could not read variables file %s: %v", e.Path, e.Err)
}

func (e *ConfigReadError) Unwrap() error {
	return e.Err
}

// ConfigWriteError is returned when the variables file cannot be rewritten.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("could not write variables file %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error {
	return e.Err
}

// MissingFieldError lists the required keys that are absent or empty.
type MissingFieldError struct {
	Path string
	Keys []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field(s) in %s: %s", e.Path, strings.Join(e.Keys, ", "))
}
