// Package repository composes request rendering, the transport and
// response mapping into typed, lazy fetch operations.
//
// Work starts on the repository's subscribe executor and results are
// delivered on its receive executor, so a caller with a foreground
// queue gets its values there:
//
//	fg := dispatch.NewQueue(16)
//	repo, err := repository.New(c, config.Default(), repository.WithReceiveOn(fg))
//	sub := repository.FetchList[users.User](repo, users.NewList(repo.API())).
//		Subscribe(ctx, onUsers, onError)
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/adamwoolhether/httpspec/client"
	"github.com/adamwoolhether/httpspec/config"
	"github.com/adamwoolhether/httpspec/dispatch"
	"github.com/adamwoolhether/httpspec/future"
	"github.com/adamwoolhether/httpspec/mapping"
	"github.com/adamwoolhether/httpspec/provider"
)

// Publisher is the producer form of the transport. *client.Client
// satisfies it.
type Publisher interface {
	Publisher(req *http.Request) *future.Producer[client.Response]
}

// Repository holds everything a fetch needs besides the request itself.
type Repository struct {
	transport   Publisher
	mapper      *mapping.Mapper
	api         config.API
	subscribeOn future.Executor
	receiveOn   future.Executor
	logger      *slog.Logger
}

// Option configures a [Repository].
type Option func(*options) error
type options struct {
	mapper      *mapping.Mapper
	subscribeOn future.Executor
	receiveOn   future.Executor
	logger      *slog.Logger
}

// WithMapper replaces the default mapper.
func WithMapper(m *mapping.Mapper) Option {
	return func(o *options) error {
		if m == nil {
			return fmt.Errorf("mapper must not be nil")
		}
		o.mapper = m
		return nil
	}
}

// WithSubscribeOn sets where exchanges start. Defaults to [dispatch.Global].
func WithSubscribeOn(exec future.Executor) Option {
	return func(o *options) error {
		if exec == nil {
			return fmt.Errorf("subscribe executor must not be nil")
		}
		o.subscribeOn = exec
		return nil
	}
}

// WithReceiveOn sets where results are delivered. Defaults to
// [dispatch.Immediate], the goroutine that finished the work.
func WithReceiveOn(exec future.Executor) Option {
	return func(o *options) error {
		if exec == nil {
			return fmt.Errorf("receive executor must not be nil")
		}
		o.receiveOn = exec
		return nil
	}
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// New returns a Repository fetching from api through transport.
func New(transport Publisher, api config.API, optFns ...Option) (*Repository, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport must not be nil")
	}

	if err := api.Validate(); err != nil {
		return nil, fmt.Errorf("validating api: %w", err)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying repository option: %w", err)
		}
	}

	r := Repository{
		transport:   transport,
		mapper:      mapping.Default(),
		api:         api,
		subscribeOn: dispatch.Global,
		receiveOn:   dispatch.Immediate,
		logger:      slog.Default(),
	}

	if opts.mapper != nil {
		r.mapper = opts.mapper
	}
	if opts.subscribeOn != nil {
		r.subscribeOn = opts.subscribeOn
	}
	if opts.receiveOn != nil {
		r.receiveOn = opts.receiveOn
	}
	if opts.logger != nil {
		r.logger = opts.logger
	}

	return &r, nil
}

// API returns the location providers should target.
func (r *Repository) API() config.API {
	return r.api
}

// Fetch renders p and returns a producer of its decoded response.
// Nothing is sent until the producer is subscribed, and each
// subscription runs exactly one exchange. A provider that fails to
// render yields a producer that fails with the render error.
func Fetch[T any](r *Repository, p provider.Provider) *future.Producer[T] {
	// Rendering isn't tied to a subscription; the transport rebinds the
	// request to each subscription's context.
	req, err := provider.Render(context.Background(), p)
	if err != nil {
		r.logger.Error("rendering request", "method", p.Method().String(), "host", p.Host(), "path", p.Path(), "error", err)
		return future.Fail[T](err).ReceiveOn(r.receiveOn)
	}

	exchange := r.transport.Publisher(req).SubscribeOn(r.subscribeOn)

	decoded := future.Map(exchange, func(resp client.Response) (T, error) {
		return mapping.MapResponse[T](r.mapper, resp)
	})

	return decoded.ReceiveOn(r.receiveOn)
}

// FetchList is Fetch for endpoints returning a JSON array.
func FetchList[T any](r *Repository, p provider.Provider) *future.Producer[[]T] {
	return Fetch[[]T](r, p)
}
