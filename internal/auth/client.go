// Package auth signs in to the API gateway login endpoint.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/wwi21seb-projekt/alpha-services/internal/httpclient"
)

type Client struct {
	client   *httpclient.HttpClient
	loginURL string
}

func NewClient(loginURL string, client *httpclient.HttpClient) *Client {
	return &Client{client: client, loginURL: loginURL}
}

// FetchToken logs in once with the given credentials and returns the JWT from the response.
func (c *Client) FetchToken(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrEmptyCredentials
	}

	slog.Debug("logging in", "url", c.loginURL, "username", username, "password", "[REDACTED]")

	response, err := c.client.PostJSON(ctx, c.loginURL, &Credentials{
		Username: username,
		Password: password,
	}, &TokenPair{}, &ErrorResponse{})

	if err != nil && (response == nil || response.RawResponse == nil) {
		slog.Error("could not login", "error", err)
		return "", &RequestError{URL: c.loginURL, Err: err}
	}

	if response.StatusCode() != http.StatusOK {
		authErr := &AuthenticationError{StatusCode: response.StatusCode()}
		if e, ok := response.Error().(*ErrorResponse); ok && e != nil && e.Error != nil {
			authErr.Code = e.Error.Code
			authErr.Message = e.Error.Message
		}
		slog.Error("login rejected", "username", username, "status", authErr.StatusCode, "code", authErr.Code)
		return "", authErr
	}

	if err != nil {
		slog.Error("could not decode login response", "error", err)
		return "", &ResponseFormatError{Reason: ErrorDecodingBody, Err: err}
	}

	pair, ok := response.Result().(*TokenPair)
	if !ok || pair == nil || pair.Token == "" {
		slog.Error(ErrorNoToken, "username", username)
		return "", &ResponseFormatError{Reason: ErrorNoToken}
	}

	slog.Debug("token received", "username", username)

	return pair.Token, nil
}
