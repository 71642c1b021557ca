package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Provider is the declarative description of a single HTTP call.
// Implementations must be immutable; [Render] never mutates them.
type Provider interface {
	Scheme() string
	Host() string
	// Path may be empty, meaning the request targets the host root.
	Path() string
	// Query items are encoded in the order given. Nil means no query.
	Query() []QueryItem
	Headers() map[string]string
	Method() Method
	ContentType() ContentType
	// Body produces the request payload. A nil or empty result means
	// the request has no body. Errors are returned by Render unchanged.
	Body() ([]byte, error)
}

// QueryItem is a single name/value pair of a URL query.
type QueryItem struct {
	Name  string
	Value string
}

// Render converts p into an *http.Request bound to ctx.
//
// Caller headers are applied first and the Content-Type header last,
// so the provider's content type always wins a collision.
func Render(ctx context.Context, p Provider) (*http.Request, error) {
	u, err := generateURL(p)
	if err != nil {
		return nil, err
	}

	method := p.Method()
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	payload, err := p.Body()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method.String(), u.String(), body)
	if err != nil {
		return nil, &URLGenerationError{Scheme: p.Scheme(), Host: p.Host(), Path: p.Path(), Err: err}
	}

	for k, v := range p.Headers() {
		req.Header.Set(k, v)
	}

	ct := p.ContentType()
	req.Header.Set(ct.Key(), ct.Value())

	return req, nil
}

// HeaderValue returns the value of the named header on req, or "" if unset.
func HeaderValue(req *http.Request, key string) string {
	if req == nil {
		return ""
	}

	return req.Header.Get(key)
}

// generateURL composes the absolute URL for p, failing rather than
// producing a URL without a scheme or host.
func generateURL(p Provider) (*url.URL, error) {
	scheme, host, path := p.Scheme(), p.Host(), p.Path()

	if scheme == "" || host == "" {
		return nil, &URLGenerationError{Scheme: scheme, Host: host, Path: path}
	}

	endpoint := url.URL{
		Scheme: scheme,
		Host:   host,
	}

	if path != "" {
		endpoint.Path = "/" + strings.TrimLeft(path, "/")
	}

	endpoint.RawQuery = encodeQuery(p.Query())

	parsed, err := url.Parse(endpoint.String())
	if err != nil {
		return nil, &URLGenerationError{Scheme: scheme, Host: host, Path: path, Err: err}
	}

	if parsed.Scheme == "" || parsed.Host == "" || !parsed.IsAbs() {
		return nil, &URLGenerationError{Scheme: scheme, Host: host, Path: path}
	}

	return parsed, nil
}

// encodeQuery keeps the caller's ordering, unlike url.Values.Encode
// which sorts by key.
func encodeQuery(items []QueryItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(item.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(item.Value))
	}

	return b.String()
}
