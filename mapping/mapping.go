// Package mapping turns raw exchange results into typed values.
//
// A status code in [500, 600) is reported as a [*MapError] without
// looking at the payload. Everything else is handed to the decoder, and
// a payload that doesn't fit the target type is a [*DecodingError].
// Client errors and redirects are not special-cased: if their payload
// decodes, the value is returned.
package mapping

import (
	"fmt"
	"net/http"

	"github.com/adamwoolhether/httpspec/client"
	"github.com/bytedance/sonic"
)

// maxErrorBody bounds how much of a server error payload is kept on a MapError.
const maxErrorBody = 512

// Decoder unmarshals a payload into v. sonic.API satisfies it.
type Decoder interface {
	Unmarshal(data []byte, v any) error
}

// DecoderFunc adapts a func to the Decoder interface.
type DecoderFunc func(data []byte, v any) error

// Unmarshal calls f(data, v).
func (f DecoderFunc) Unmarshal(data []byte, v any) error { return f(data, v) }

// Mapper holds the decoding configuration shared by every [Map] call.
// The zero value is not usable; use [New].
type Mapper struct {
	decoder Decoder
}

// Option configures a [Mapper].
type Option func(*options) error
type options struct {
	decoder   Decoder
	useNumber bool
}

// WithDecoder replaces the default sonic decoder.
func WithDecoder(d Decoder) Option {
	return func(o *options) error {
		if d == nil {
			return fmt.Errorf("decoder must not be nil")
		}
		o.decoder = d
		return nil
	}
}

// WithUseNumber decodes JSON numbers held in interface values as
// json.Number instead of float64. Ignored when WithDecoder is used.
func WithUseNumber() Option {
	return func(o *options) error {
		o.useNumber = true
		return nil
	}
}

// New builds a Mapper. By default payloads are decoded with sonic's
// encoding/json compatible configuration.
func New(optFns ...Option) (*Mapper, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying mapper option: %w", err)
		}
	}

	m := Mapper{decoder: sonic.ConfigStd}

	switch {
	case opts.decoder != nil:
		m.decoder = opts.decoder
	case opts.useNumber:
		m.decoder = sonic.Config{
			EscapeHTML:       true,
			SortMapKeys:      true,
			CompactMarshaler: true,
			CopyString:       true,
			ValidateString:   true,
			UseNumber:        true,
		}.Froze()
	}

	return &m, nil
}

// Default returns a Mapper with the default decoder.
func Default() *Mapper {
	return &Mapper{decoder: sonic.ConfigStd}
}

// Map classifies status and decodes payload into a T. Only status takes
// part in classification; header is passed along for callers that log it.
func Map[T any](m *Mapper, payload []byte, status int, header http.Header) (T, error) {
	var v T

	if status >= 500 && status < 600 {
		return v, &MapError{StatusCode: status, Body: truncate(payload)}
	}

	if err := m.decoder.Unmarshal(payload, &v); err != nil {
		var zero T
		return zero, &DecodingError{
			Target:     fmt.Sprintf("%T", v),
			StatusCode: status,
			Err:        err,
		}
	}

	return v, nil
}

// MapResponse is Map over a client.Response.
func MapResponse[T any](m *Mapper, resp client.Response) (T, error) {
	return Map[T](m, resp.Payload, resp.StatusCode, resp.Header)
}

func truncate(payload []byte) string {
	if len(payload) > maxErrorBody {
		return string(payload[:maxErrorBody]) + "..."
	}
	return string(payload)
}
