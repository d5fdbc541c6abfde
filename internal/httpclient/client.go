package httpclient

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

// HttpClient is a wrapper around the resty.Client
type HttpClient struct {
	Client *resty.Client
}

func New() *HttpClient {
	return NewWithClient(resty.New())
}

// NewWithClient wraps an existing client. Retries are disabled, a request is sent exactly once.
func NewWithClient(client *resty.Client) *HttpClient {
	return &HttpClient{Client: client.SetRetryCount(0)}
}

// PostJSON sends body as JSON to url.
// A 2xx response is decoded into res, a 4xx/5xx response into errRes. Either may be nil.
// The body is decoded as JSON whatever Content-Type the server sends.
func (c *HttpClient) PostJSON(ctx context.Context, url string, body, res, errRes interface{}) (*resty.Response, error) {
	slog.Debug("POST", "url", url)
	r := c.Client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(body)
	if res != nil || errRes != nil {
		// The gateway does not always label its JSON bodies.
		r = r.ForceContentType("application/json")
	}
	if res != nil {
		r = r.SetResult(res)
	}
	if errRes != nil {
		r = r.SetError(errRes)
	}
	return r.Post(url)
}
