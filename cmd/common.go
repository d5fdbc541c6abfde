package cmd

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/wwi21seb-projekt/alpha-services/internal/httpclient"
)

type contextKey string

// RestyClientKey is the context key under which tests inject a mocked resty client
const RestyClientKey contextKey = "restyClient"

const (
	ErrorBindingFlag = "unable to bind flag"
)

// CreateRestClient wraps the resty client stored in ctx, or a new one.
// Retries are left disabled, a login is attempted exactly once.
func CreateRestClient(ctx context.Context) *httpclient.HttpClient {
	if ctx != nil {
		if client, ok := ctx.Value(RestyClientKey).(*resty.Client); ok && client != nil {
			slog.Debug("Using REST client from context")
			return httpclient.NewWithClient(client)
		}
	}

	slog.Debug("Creating REST client...")
	return httpclient.New()
}
