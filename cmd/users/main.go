// Command users lists the users of a jsonplaceholder-style API.
//
// Usage:
//
//	users [-env .env] [-timeout 10s] [-resty] [-fake] [-log-level info]
//
// The API location comes from HTTPSPEC_API_SCHEME and HTTPSPEC_API_HOST,
// read from the environment or the -env file. With -fake, a local
// in-memory API is served instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adamwoolhether/httpspec"
	"github.com/adamwoolhether/httpspec/client"
	"github.com/adamwoolhether/httpspec/client/restydoer"
	"github.com/adamwoolhether/httpspec/config"
	"github.com/adamwoolhether/httpspec/dispatch"
	"github.com/adamwoolhether/httpspec/internal/fakeapi"
	"github.com/adamwoolhether/httpspec/mapping"
	"github.com/adamwoolhether/httpspec/repository"
	"github.com/adamwoolhether/httpspec/users"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "users: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	envFile   string
	timeout   time.Duration
	useResty  bool
	fake      bool
	logLevel  string
	userAgent string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.envFile, "env", ".env", "optional env file holding HTTPSPEC_* settings")
	fs.DurationVar(&f.timeout, "timeout", 10*time.Second, "overall request timeout")
	fs.BoolVar(&f.useResty, "resty", false, "send requests through resty instead of net/http")
	fs.BoolVar(&f.fake, "fake", false, "serve and query a local in-memory API")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&f.userAgent, "user-agent", "httpspec-users/1.0", "User-Agent header")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := newLogger(f.logLevel, stderr)
	defer func() { _ = log.Sync() }()

	api, err := config.Load(f.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if f.fake {
		addr, shutdown, err := serveFake(log)
		if err != nil {
			return fmt.Errorf("serve fake api: %w", err)
		}
		defer shutdown()

		api = config.API{Scheme: "http", Host: addr}
	}

	log.Infow("fetching users", "scheme", api.Scheme, "host", api.Host, "resty", f.useResty)

	c, err := httpspec.NewClient(clientOptions(f)...)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	// Results are delivered here, one at a time, like a UI main queue.
	fg := dispatch.NewQueue(16)
	defer func() {
		fg.Close()
		fg.Wait()
	}()

	repo, err := httpspec.NewUserRepository(c, api, repository.WithReceiveOn(fg))
	if err != nil {
		return err
	}

	return listUsers(ctx, repo, log, stdout)
}

func clientOptions(f flags) []client.Option {
	opts := []client.Option{client.WithUserAgent(f.userAgent)}

	if f.useResty {
		return append(opts, client.WithDoer(restydoer.New(newRestyClient(f))))
	}

	return append(opts,
		client.WithRequestID(""),
		client.WithTimeout(f.timeout),
	)
}

// newRestyClient carries the transport options a custom Doer bypasses.
func newRestyClient(f flags) *resty.Client {
	return resty.New().
		SetTimeout(f.timeout).
		SetHeader("User-Agent", f.userAgent).
		OnBeforeRequest(restydoer.RequestID(""))
}

// listUsers subscribes to the users producer, prints every user and
// reports the failure class of an error.
func listUsers(ctx context.Context, repo *users.Repository, log *zap.SugaredLogger, stdout io.Writer) error {
	var fetchErr error

	sub := repo.FetchUsers().Subscribe(ctx,
		func(all []users.User) {
			for _, u := range all {
				fmt.Fprintf(stdout, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
			}
			log.Infow("users fetched", "count", len(all))
		},
		func(err error) {
			fetchErr = err
			log.Errorw("fetching users failed", "kind", classify(err), "error", err)
		},
	)

	select {
	case <-sub.Done():
	case <-ctx.Done():
		sub.Cancel()
		return ctx.Err()
	}

	return fetchErr
}

func classify(err error) string {
	var mapErr *mapping.MapError

	switch {
	case errors.As(err, &mapErr):
		return fmt.Sprintf("server error %d", mapErr.StatusCode)
	case errors.Is(err, mapping.ErrDecoding):
		return "decoding"
	case errors.Is(err, client.ErrHTTPCasting), errors.Is(err, client.ErrData):
		return "response"
	default:
		return "transport"
	}
}

// serveFake starts the in-memory API on a loopback port.
func serveFake(log *zap.SugaredLogger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	srv := http.Server{
		Handler:           fakeapi.New(fakeapi.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("fake api stopped", "error", err)
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorw("fake api shutdown", "error", err)
		}
	}

	return ln.Addr().String(), shutdown, nil
}
