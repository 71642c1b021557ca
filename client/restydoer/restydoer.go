// Package restydoer runs exchanges through a [resty.Client], for
// callers that already configure their networking with resty.
//
//	c, err := client.Build(client.WithDoer(restydoer.New(resty.New().SetTimeout(5 * time.Second))))
package restydoer

import (
	"fmt"
	"io"
	"net/http"

	"github.com/adamwoolhether/httpspec/client"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Doer adapts a resty client to the client package's Doer interface.
type Doer struct {
	resty *resty.Client
}

// New wraps rc. A nil rc gets resty's defaults.
func New(rc *resty.Client) *Doer {
	if rc == nil {
		rc = resty.New()
	}

	return &Doer{resty: rc}
}

// Do executes req and hands back resty's raw response with its body
// unread. Errors from resty are returned unchanged.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	r := d.resty.R().
		SetContext(req.Context()).
		SetDoNotParseResponse(true).
		SetHeaderMultiValues(req.Header)

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			return nil, fmt.Errorf("closing request body: %w", err)
		}
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	return resp.RawResponse, nil
}

// RequestID returns resty middleware stamping every request with a
// random UUID in the named header, unless the request already carries
// one. It mirrors [client.WithRequestID], which a custom Doer bypasses:
//
//	rc := resty.New().OnBeforeRequest(restydoer.RequestID(""))
func RequestID(header string) resty.RequestMiddleware {
	if header == "" {
		header = client.DefaultRequestIDHeader
	}

	return func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(header) == "" {
			r.Header.Set(header, uuid.NewString())
		}
		return nil
	}
}
