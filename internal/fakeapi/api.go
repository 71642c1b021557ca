// Package fakeapi serves an in-memory stand-in for the jsonplaceholder
// users endpoints, so the full request chain can run over real HTTP
// without leaving the machine.
//
//	srv := httptest.NewServer(fakeapi.New())
//	defer srv.Close()
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/adamwoolhether/httpspec/users"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// API is the fake users service. It is safe for concurrent use.
type API struct {
	app     *app
	store   *store
	failure atomic.Int32
}

// Option configures an [API].
type Option func(*options)
type options struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	seed    []users.User
	failure int
}

// WithLogger sets the logger used for request and error logs.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithTracer injects the tracer handler spans are started on.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithUsers replaces the default seed data.
func WithUsers(seed []users.User) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithFailure makes every request fail with status until [API.Fail] is
// called with 0.
func WithFailure(status int) Option {
	return func(o *options) {
		o.failure = status
	}
}

// New returns an API seeded with [Seed] unless WithUsers is given.
func New(optFns ...Option) *API {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.tracer == nil {
		opts.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}
	if opts.seed == nil {
		opts.seed = Seed()
	}

	a := API{
		app: &app{
			mux:    http.NewServeMux(),
			logger: opts.logger,
			tracer: opts.tracer,
			mw: []Middleware{
				logger(opts.logger),
				errorsHandler(opts.logger),
				panics(),
			},
		},
		store: newStore(opts.seed),
	}
	a.failure.Store(int32(opts.failure))

	a.app.handle(http.MethodGet, "/users", a.list)
	a.app.handle(http.MethodPost, "/users", a.create)
	a.app.handle(http.MethodGet, "/users/{id}", a.get)
	a.app.handle(http.MethodPut, "/users/{id}", a.replace)
	a.app.handle(http.MethodPatch, "/users/{id}", a.update)
	a.app.handle(http.MethodDelete, "/users/{id}", a.delete)

	return &a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.app.ServeHTTP(w, r)
}

// Fail makes every subsequent request fail with status. 0 restores
// normal operation.
func (a *API) Fail(status int) {
	a.failure.Store(int32(status))
}

func (a *API) forced() error {
	if status := int(a.failure.Load()); status != 0 {
		return newError(status, fmt.Errorf("forced failure"))
	}
	return nil
}

func (a *API) list(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.forced(); err != nil {
		return err
	}

	return respondJSON(ctx, w, http.StatusOK, a.store.list())
}

func (a *API) get(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.forced(); err != nil {
		return err
	}

	id, err := pathID(r)
	if err != nil {
		return err
	}

	u, ok := a.store.get(id)
	if !ok {
		return newError(http.StatusNotFound, fmt.Errorf("user %d not found", id))
	}

	return respondJSON(ctx, w, http.StatusOK, u)
}

func (a *API) create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.forced(); err != nil {
		return err
	}

	var u users.User
	if err := decode(r, &u); err != nil {
		return err
	}

	return respondJSON(ctx, w, http.StatusCreated, a.store.create(u))
}

func (a *API) replace(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.forced(); err != nil {
		return err
	}

	id, err := pathID(r)
	if err != nil {
		return err
	}

	var u users.User
	if err := decode(r, &u); err != nil {
		return err
	}

	stored, ok := a.store.update(id, func(users.User) users.User { return u })
	if !ok {
		return newError(http.StatusNotFound, fmt.Errorf("user %d not found", id))
	}

	return respondJSON(ctx, w, http.StatusOK, stored)
}

func (a *API) update(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.forced(); err != nil {
		return err
	}

	id, err := pathID(r)
	if err != nil {
		return err
	}

	var p users.Patch
	if err := decode(r, &p); err != nil {
		return err
	}

	stored, ok := a.store.update(id, p.Apply)
	if !ok {
		return newError(http.StatusNotFound, fmt.Errorf("user %d not found", id))
	}

	return respondJSON(ctx, w, http.StatusOK, stored)
}

func (a *API) delete(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.forced(); err != nil {
		return err
	}

	id, err := pathID(r)
	if err != nil {
		return err
	}

	a.store.delete(id)

	return respondJSON(ctx, w, http.StatusOK, users.Deleted{})
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, newError(http.StatusBadRequest, fmt.Errorf("invalid user id %q", r.PathValue("id")))
	}

	return id, nil
}

func decode(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}

	if len(body) == 0 {
		return newError(http.StatusBadRequest, errors.New("empty request body"))
	}

	if err := sonic.ConfigStd.Unmarshal(body, v); err != nil {
		return newError(http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
	}

	return nil
}
