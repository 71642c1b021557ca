// Package httpspec wires the client, repository and users packages
// together for callers that want the defaults.
package httpspec

import (
	"fmt"

	"github.com/adamwoolhether/httpspec/client"
	"github.com/adamwoolhether/httpspec/config"
	"github.com/adamwoolhether/httpspec/repository"
	"github.com/adamwoolhether/httpspec/users"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, a fresh http.Client on http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewUserRepository returns a users repository fetching from api
// through transport.
func NewUserRepository(transport repository.Publisher, api config.API, opts ...repository.Option) (*users.Repository, error) {
	repo, err := repository.New(transport, api, opts...)
	if err != nil {
		return nil, fmt.Errorf("building user repository: %w", err)
	}

	return users.NewRepository(repo), nil
}
