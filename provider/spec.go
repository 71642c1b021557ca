package provider

import (
	"maps"
	"slices"

	"github.com/bytedance/sonic"
)

// Spec is a general purpose [Provider] for requests that don't warrant
// their own endpoint type. Construct it with [New].
type Spec struct {
	scheme      string
	host        string
	path        string
	query       []QueryItem
	headers     map[string]string
	method      Method
	contentType ContentType
	body        func() ([]byte, error)
}

// New returns a Spec targeting scheme://host. Unless overridden, the
// method is GET and the content type is [JSON].
func New(scheme, host string, opts ...SpecOption) Spec {
	s := Spec{
		scheme:      scheme,
		host:        host,
		method:      MethodGet,
		contentType: JSON,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func (s Spec) Scheme() string             { return s.scheme }
func (s Spec) Host() string               { return s.host }
func (s Spec) Path() string               { return s.path }
func (s Spec) Query() []QueryItem         { return slices.Clone(s.query) }
func (s Spec) Headers() map[string]string { return maps.Clone(s.headers) }
func (s Spec) Method() Method             { return s.method }
func (s Spec) ContentType() ContentType   { return s.contentType }

func (s Spec) Body() ([]byte, error) {
	if s.body == nil {
		return nil, nil
	}

	return s.body()
}

// SpecOption is a functional option for [New].
type SpecOption func(*Spec)

// WithPath sets the request path. A leading slash is optional.
func WithPath(path string) SpecOption {
	return func(s *Spec) {
		s.path = path
	}
}

// WithQuery appends query items, preserving their order.
func WithQuery(items ...QueryItem) SpecOption {
	return func(s *Spec) {
		s.query = append(slices.Clone(s.query), items...)
	}
}

// WithHeaders sets caller headers. Content-Type is ignored in favour
// of [WithContentType].
func WithHeaders(headers map[string]string) SpecOption {
	return func(s *Spec) {
		s.headers = maps.Clone(headers)
	}
}

// WithMethod overrides the default GET verb.
func WithMethod(m Method) SpecOption {
	return func(s *Spec) {
		s.method = m
	}
}

// WithContentType overrides the default JSON content type.
func WithContentType(ct ContentType) SpecOption {
	return func(s *Spec) {
		s.contentType = ct
	}
}

// WithBody attaches a fixed payload.
func WithBody(payload []byte) SpecOption {
	b := slices.Clone(payload)
	return WithBodyFunc(func() ([]byte, error) { return b, nil })
}

// WithBodyFunc attaches a fallible payload producer, invoked on each render.
func WithBodyFunc(fn func() ([]byte, error)) SpecOption {
	return func(s *Spec) {
		s.body = fn
	}
}

// WithJSONBody attaches v encoded as JSON. Encoding happens at render
// time and its error is returned by [Render].
func WithJSONBody(v any) SpecOption {
	return WithBodyFunc(JSONBody(v))
}

// JSONBody returns a body producer encoding v as JSON. Map keys are
// sorted so repeated renders yield identical bytes.
func JSONBody(v any) func() ([]byte, error) {
	return func() ([]byte, error) {
		return sonic.ConfigStd.Marshal(v)
	}
}
