package restydoer_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adamwoolhether/httpspec/client"
	"github.com/adamwoolhether/httpspec/client/restydoer"
	"github.com/go-resty/resty/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestDoer_Do(t *testing.T) {
	type seen struct {
		Method string
		Path   string
		Query  string
		Header string
		Type   string
		Body   string
	}

	testCases := map[string]struct {
		method string
		target string
		body   string
		exp    seen
	}{
		"get": {
			method: http.MethodGet,
			target: "/users?page=2",
			exp:    seen{Method: http.MethodGet, Path: "/users", Query: "page=2", Header: "yes", Type: "application/json"},
		},
		"post": {
			method: http.MethodPost,
			target: "/users",
			body:   `{"name":"Ada"}`,
			exp:    seen{Method: http.MethodPost, Path: "/users", Header: "yes", Type: "application/json", Body: `{"name":"Ada"}`},
		},
		"patch": {
			method: http.MethodPatch,
			target: "/users/1",
			body:   `{"email":"a@b.c"}`,
			exp:    seen{Method: http.MethodPatch, Path: "/users/1", Header: "yes", Type: "application/json", Body: `{"email":"a@b.c"}`},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var got seen
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				got = seen{
					Method: r.Method,
					Path:   r.URL.Path,
					Query:  r.URL.RawQuery,
					Header: r.Header.Get("X-Test"),
					Type:   r.Header.Get("Content-Type"),
					Body:   string(b),
				}
				w.WriteHeader(http.StatusAccepted)
				w.Write([]byte("done"))
			}))
			defer ts.Close()

			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req, err := http.NewRequestWithContext(t.Context(), tc.method, ts.URL+tc.target, body)
			if err != nil {
				t.Fatal(err)
			}
			req.Header.Set("X-Test", "yes")
			req.Header.Set("Content-Type", "application/json")

			resp, err := restydoer.New(nil).Do(req)
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusAccepted {
				t.Errorf("exp status %d, got %d", http.StatusAccepted, resp.StatusCode)
			}
			payload, _ := io.ReadAll(resp.Body)
			if string(payload) != "done" {
				t.Errorf("exp unread body %q, got %q", "done", payload)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDoer_WithClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c, err := client.Build(client.WithDoer(restydoer.New(resty.New())))
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := c.Data(req)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if string(resp.Payload) != "[]" {
		t.Errorf("exp payload %q, got %q", "[]", resp.Payload)
	}
}

func TestDoer_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	c, err := client.Build(client.WithDoer(restydoer.New(nil)))
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Data(req)
	if err == nil {
		t.Fatal("exp transport error")
	}
	if errors.Is(err, client.ErrData) || errors.Is(err, client.ErrHTTPCasting) {
		t.Errorf("exp runtime error, got %v", err)
	}
}

func TestRequestID(t *testing.T) {
	testCases := map[string]struct {
		header   string
		preset   string
		expKey   string
		expValue string
	}{
		"defaultHeader": {expKey: client.DefaultRequestIDHeader},
		"customHeader":  {header: "X-Trace", expKey: "X-Trace"},
		"keepsExisting": {preset: "abc", expKey: client.DefaultRequestIDHeader, expValue: "abc"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var got string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get(tc.expKey)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer ts.Close()

			rc := resty.New().OnBeforeRequest(restydoer.RequestID(tc.header))
			c, err := client.Build(client.WithDoer(restydoer.New(rc)))
			if err != nil {
				t.Fatal(err)
			}

			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tc.preset != "" {
				req.Header.Set(tc.expKey, tc.preset)
			}

			if _, err := c.Data(req); err != nil {
				t.Fatal(err)
			}

			if tc.expValue != "" {
				if got != tc.expValue {
					t.Errorf("exp %s %q, got %q", tc.expKey, tc.expValue, got)
				}
				return
			}
			if err := uuid.Validate(got); err != nil {
				t.Errorf("exp a uuid in %s, got %q: %v", tc.expKey, got, err)
			}
		})
	}
}
