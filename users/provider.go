package users

import (
	"strconv"

	"github.com/adamwoolhether/httpspec/config"
	"github.com/adamwoolhether/httpspec/provider"
)

const collection = "users"

// endpoint carries what every users endpoint shares. Variants embed it
// and supply their own path, method and body.
type endpoint struct {
	api config.API
}

func (e endpoint) Scheme() string                  { return e.api.Scheme }
func (e endpoint) Host() string                    { return e.api.Host }
func (endpoint) Query() []provider.QueryItem       { return nil }
func (endpoint) Headers() map[string]string        { return nil }
func (endpoint) ContentType() provider.ContentType { return provider.JSON }
func (endpoint) Body() ([]byte, error)             { return nil, nil }

func member(id int) string {
	return collection + "/" + strconv.Itoa(id)
}

// List fetches every user: GET /users.
type List struct{ endpoint }

func NewList(api config.API) List { return List{endpoint{api}} }

func (List) Path() string            { return collection }
func (List) Method() provider.Method { return provider.MethodGet }

// Get fetches one user: GET /users/{id}.
type Get struct {
	endpoint
	ID int
}

func NewGet(api config.API, id int) Get { return Get{endpoint: endpoint{api}, ID: id} }

func (g Get) Path() string          { return member(g.ID) }
func (Get) Method() provider.Method { return provider.MethodGet }

// Create adds a user: POST /users.
type Create struct {
	endpoint
	User User
}

func NewCreate(api config.API, u User) Create { return Create{endpoint: endpoint{api}, User: u} }

func (Create) Path() string            { return collection }
func (Create) Method() provider.Method { return provider.MethodPost }
func (c Create) Body() ([]byte, error) { return provider.JSONBody(c.User)() }

// Replace overwrites a whole user: PUT /users/{id}.
type Replace struct {
	endpoint
	ID   int
	User User
}

func NewReplace(api config.API, id int, u User) Replace {
	return Replace{endpoint: endpoint{api}, ID: id, User: u}
}

func (r Replace) Path() string          { return member(r.ID) }
func (Replace) Method() provider.Method { return provider.MethodPut }

// Body sends the full user with its ID forced to match the path.
func (r Replace) Body() ([]byte, error) {
	u := r.User
	u.ID = r.ID
	return provider.JSONBody(u)()
}

// Update changes some fields of a user: PATCH /users/{id}.
type Update struct {
	endpoint
	ID    int
	Patch Patch
}

func NewUpdate(api config.API, id int, p Patch) Update {
	return Update{endpoint: endpoint{api}, ID: id, Patch: p}
}

func (u Update) Path() string          { return member(u.ID) }
func (Update) Method() provider.Method { return provider.MethodPatch }
func (u Update) Body() ([]byte, error) { return provider.JSONBody(u.Patch)() }

// Delete removes a user: DELETE /users/{id}.
type Delete struct {
	endpoint
	ID int
}

func NewDelete(api config.API, id int) Delete { return Delete{endpoint: endpoint{api}, ID: id} }

func (d Delete) Path() string          { return member(d.ID) }
func (Delete) Method() provider.Method { return provider.MethodDelete }
