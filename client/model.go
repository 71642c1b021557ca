package client

import (
	"errors"
	"net/http"
)

var (
	// ErrHTTPCasting is returned when the runtime hands back something
	// that isn't an HTTP response: no response at all, or one without a
	// valid three digit status code.
	ErrHTTPCasting = errors.New("response is not an http response")
	// ErrData is returned when an HTTP response arrived without a body,
	// or the body could not be read.
	ErrData = errors.New("response data unavailable")
)

// Doer is the networking runtime a [Client] delegates I/O to.
// *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the outcome of a successful exchange. Payload may be
// empty when the server sent an empty body.
type Response struct {
	Payload    []byte
	StatusCode int
	Header     http.Header
}

// httpShaped reports whether resp can be treated as an HTTP response.
func httpShaped(resp *http.Response) bool {
	return resp != nil && resp.StatusCode >= 100 && resp.StatusCode <= 999
}
