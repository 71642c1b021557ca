package fakeapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adamwoolhether/httpspec/internal/fakeapi"
	"github.com/adamwoolhether/httpspec/users"
	"github.com/google/go-cmp/cmp"
)

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	return resp.StatusCode, payload
}

func TestAPI_Routes(t *testing.T) {
	seed := fakeapi.Seed()

	testCases := map[string]struct {
		method    string
		path      string
		body      string
		expStatus int
		expBody   any
	}{
		"list": {
			method: http.MethodGet, path: "/users",
			expStatus: http.StatusOK, expBody: seed,
		},
		"get": {
			method: http.MethodGet, path: "/users/2",
			expStatus: http.StatusOK, expBody: seed[1],
		},
		"getMissing": {
			method: http.MethodGet, path: "/users/99",
			expStatus: http.StatusNotFound, expBody: map[string]any{"code": float64(404), "message": "user 99 not found"},
		},
		"getInvalidID": {
			method: http.MethodGet, path: "/users/abc",
			expStatus: http.StatusBadRequest, expBody: map[string]any{"code": float64(400), "message": `invalid user id "abc"`},
		},
		"create": {
			method: http.MethodPost, path: "/users", body: `{"name":"Ada","username":"ada"}`,
			expStatus: http.StatusCreated, expBody: users.User{ID: 4, Name: "Ada", Username: "ada"},
		},
		"createEmpty": {
			method: http.MethodPost, path: "/users",
			expStatus: http.StatusBadRequest, expBody: map[string]any{"code": float64(400), "message": "empty request body"},
		},
		"replace": {
			method: http.MethodPut, path: "/users/1", body: `{"id":77,"name":"Replaced"}`,
			expStatus: http.StatusOK, expBody: users.User{ID: 1, Name: "Replaced"},
		},
		"update": {
			method: http.MethodPatch, path: "/users/3", body: `{"email":"new@example.com"}`,
			expStatus: http.StatusOK, expBody: func() users.User {
				u := seed[2]
				u.Email = "new@example.com"
				return u
			}(),
		},
		"delete": {
			method: http.MethodDelete, path: "/users/1",
			expStatus: http.StatusOK, expBody: map[string]any{},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(fakeapi.New())
			defer srv.Close()

			status, payload := do(t, srv, tc.method, tc.path, tc.body)
			if status != tc.expStatus {
				t.Fatalf("exp status %d, got %d: %s", tc.expStatus, status, payload)
			}

			got := decodeAs(t, tc.expBody, payload)
			if diff := cmp.Diff(tc.expBody, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func decodeAs(t *testing.T, like any, payload []byte) any {
	t.Helper()

	var err error
	var out any
	switch like.(type) {
	case []users.User:
		var v []users.User
		err = json.Unmarshal(payload, &v)
		out = v
	case users.User:
		var v users.User
		err = json.Unmarshal(payload, &v)
		out = v
	default:
		var v map[string]any
		err = json.Unmarshal(payload, &v)
		out = v
	}
	if err != nil {
		t.Fatalf("decoding %s: %v", payload, err)
	}

	return out
}

func TestAPI_DeleteRemoves(t *testing.T) {
	srv := httptest.NewServer(fakeapi.New())
	defer srv.Close()

	if status, _ := do(t, srv, http.MethodDelete, "/users/2", ""); status != http.StatusOK {
		t.Fatalf("delete: status %d", status)
	}
	if status, _ := do(t, srv, http.MethodGet, "/users/2", ""); status != http.StatusNotFound {
		t.Errorf("exp deleted user to be gone, got status %d", status)
	}
}

func TestAPI_Fail(t *testing.T) {
	api := fakeapi.New(fakeapi.WithFailure(http.StatusServiceUnavailable))
	srv := httptest.NewServer(api)
	defer srv.Close()

	status, payload := do(t, srv, http.MethodGet, "/users", "")
	if status != http.StatusServiceUnavailable {
		t.Fatalf("exp %d, got %d", http.StatusServiceUnavailable, status)
	}
	if !bytes.Contains(payload, []byte("forced failure")) {
		t.Errorf("exp failure message, got %s", payload)
	}

	api.Fail(0)
	if status, _ := do(t, srv, http.MethodGet, "/users", ""); status != http.StatusOK {
		t.Errorf("exp recovery, got %d", status)
	}
}

func TestAPI_WithUsers(t *testing.T) {
	srv := httptest.NewServer(fakeapi.New(fakeapi.WithUsers([]users.User{})))
	defer srv.Close()

	status, payload := do(t, srv, http.MethodGet, "/users", "")
	if status != http.StatusOK || string(payload) != "[]" {
		t.Errorf("exp empty list, got %d %s", status, payload)
	}
}

func TestAPI_UnknownRoute(t *testing.T) {
	srv := httptest.NewServer(fakeapi.New())
	defer srv.Close()

	if status, _ := do(t, srv, http.MethodGet, "/posts", ""); status != http.StatusNotFound {
		t.Errorf("exp %d, got %d", http.StatusNotFound, status)
	}
}
