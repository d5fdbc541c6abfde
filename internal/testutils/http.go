package testutils

import (
	"encoding/json"
	"net/http"

	"github.com/jarcoal/httpmock"
)

const (
	RootUrl  = "http://fakeurl:3001/api/"
	LoginUrl = RootUrl + "users/login"
)

// TokenResponder answers every login with the given token.
func TokenResponder(token string) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]string{
		"token":        token,
		"refreshToken": "refresh-" + token,
	})
}

// ErrorResponder answers with the API gateway error envelope.
func ErrorResponder(status int, code, message string) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// RawJSONResponder answers with body as-is and a JSON content type.
func RawJSONResponder(status int, body string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, body)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
}

// LoginResponder issues tokens[username] when the password matches passwords[username].
// Any other request is rejected with 401 INVALID_CREDENTIALS.
func LoginResponder(passwords, tokens map[string]string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		var credentials struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
			return ErrorResponder(http.StatusBadRequest, "BAD_REQUEST", "The request body is invalid")(req)
		}

		password, ok := passwords[credentials.Username]
		if !ok || password != credentials.Password {
			return ErrorResponder(http.StatusUnauthorized, "INVALID_CREDENTIALS", "The credentials are invalid")(req)
		}

		return TokenResponder(tokens[credentials.Username])(req)
	}
}
