package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/adamwoolhether/httpspec/client/throttle"
	"github.com/adamwoolhether/httpspec/future"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Client executes rendered requests through a [Doer] and exposes the
// outcome in three forms: [Client.Publisher], [Client.Data] and
// [Client.Make]. All three share one exchange, so they classify the
// same outcome identically.
type Client struct {
	doer   Doer
	logger *slog.Logger
	tracer trace.Tracer
}

// Build assembles a Client. Without options it uses a fresh
// *http.Client on [http.DefaultTransport].
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("httpspec/client"),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.doer != nil {
		client.doer = opts.doer
		return client, nil
	}

	hc := &http.Client{}
	if opts.client != nil {
		cpy := *opts.client
		hc = &cpy
	}

	if opts.timeout != nil {
		hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.requestIDHeader != "" {
		transport = requestID{header: opts.requestIDHeader, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	if opts.registerer != nil {
		rt, err := instrument(opts.registerer, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring metrics: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	client.doer = hc

	return client, nil
}

// Publisher returns a lazy producer for req. Every subscription replays
// req under the subscription's context and runs its own exchange.
func (c *Client) Publisher(req *http.Request) *future.Producer[Response] {
	return future.New(func(ctx context.Context) (Response, error) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stop := context.AfterFunc(req.Context(), cancel)
		defer stop()

		return c.exchange(ctx, req)
	})
}

// Data runs the exchange on the calling goroutine and returns its outcome.
func (c *Client) Data(req *http.Request) (Response, error) {
	return c.exchange(req.Context(), req)
}

// Make runs the exchange on a background goroutine and calls completion
// exactly once with its outcome. It returns immediately.
func (c *Client) Make(req *http.Request, completion func(Response, error)) {
	go func() {
		completion(c.exchange(req.Context(), req))
	}()
}

// exchange is the single primitive behind all three forms. Errors from
// the Doer are returned unchanged.
func (c *Client) exchange(ctx context.Context, req *http.Request) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "client.exchange", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("url", req.URL.String()),
	)

	r, err := replay(ctx, req)
	if err != nil {
		return Response{}, err
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

	resp, err := c.doer.Do(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return Response{}, err
	}

	if !httpShaped(resp) {
		c.closeBody(resp)
		span.SetStatus(codes.Error, ErrHTTPCasting.Error())
		return Response{}, ErrHTTPCasting
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.Body == nil {
		span.SetStatus(codes.Error, ErrData.Error())
		return Response{}, ErrData
	}
	defer c.closeBody(resp)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return Response{}, fmt.Errorf("%w: reading body: %w", ErrData, err)
	}

	c.logger.Debug("exchange complete",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"bytes", len(payload),
		"traceID", span.SpanContext().TraceID().String(),
	)

	return Response{
		Payload:    payload,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil
}

// replay clones req onto ctx with a fresh body, so one rendered request
// can be executed more than once.
func replay(ctx context.Context, req *http.Request) (*http.Request, error) {
	r := req.Clone(ctx)

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replaying request body: %w", err)
		}
		r.Body = body
	}

	return r, nil
}

func (c *Client) closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}
