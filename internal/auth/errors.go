package auth

import (
	"errors"
	"fmt"
)

const (
	ErrorNoToken      = "no token in response"
	ErrorDecodingBody = "could not decode response body"
)

var ErrEmptyCredentials = errors.New("username and password are required")

// AuthenticationError is returned when the login endpoint answers with anything but 200 OK.
type AuthenticationError struct {
	StatusCode int
	Code       string // Server error code, if the body carried one
	Message    string // Server error message, if the body carried one
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("failed to obtain JWT token: HTTP %d", e.StatusCode)
	switch {
	case e.Code != "" && e.Message != "":
		msg += fmt.Sprintf(" (%s: %s)", e.Code, e.Message)
	case e.Message != "":
		msg += fmt.Sprintf(" (%s)", e.Message)
	case e.Code != "":
		msg += fmt.Sprintf(" (%s)", e.Code)
	}
	return msg
}

// ResponseFormatError is returned when a 200 OK response does not carry a usable token.
type ResponseFormatError struct {
	Reason string
	Err    error
}

func (e *ResponseFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected login response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected login response: %s", e.Reason)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}

// RequestError is returned when no response was received at all.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("login request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
