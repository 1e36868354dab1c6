package npm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackdiff/pkg/deps"
	errs "github.com/matzehuels/stackdiff/pkg/errors"
	"github.com/matzehuels/stackdiff/pkg/integrations"
)

const expressManifest = `{
  "name": "express",
  "version": "4.18.2",
  "description": "Fast, unopinionated, minimalist web framework",
  "license": "MIT",
  "dependencies": {
    "body-parser": "1.20.1",
    "accepts": "~1.3.8",
    "cookie": "0.5.0",
    "array-flatten": "1.1.1"
  },
  "devDependencies": {
    "mocha": "10.0.0"
  }
}`

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestNpmClient(server *httptest.Server) *Client {
	c := NewClient(server.URL+"/", log.New(io.Discard))
	c.SetRetry(1, time.Millisecond)
	return c
}

func TestManifest(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/express/4.18.2": expressManifest,
	})
	c := newTestNpmClient(server)

	m, err := c.Manifest(context.Background(), "express", "4.18.2")
	if err != nil {
		t.Fatalf("Manifest() error: %v", err)
	}
	if m.Name != "express" || m.Version != "4.18.2" || m.License != "MIT" {
		t.Errorf("Manifest() = %+v", m)
	}

	want := []deps.Module{
		{Name: "body-parser", Version: "1.20.1"},
		{Name: "accepts", Version: "~1.3.8"},
		{Name: "cookie", Version: "0.5.0"},
		{Name: "array-flatten", Version: "1.1.1"},
	}
	if len(m.Dependencies) != len(want) {
		t.Fatalf("Dependencies = %v, want %v", m.Dependencies, want)
	}
	for i := range want {
		if m.Dependencies[i] != want[i] {
			t.Errorf("Dependencies[%d] = %v, want %v", i, m.Dependencies[i], want[i])
		}
	}
}

func TestLookupRangeAndScope(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/@babel%2Fcore/%5E7.0.0": `{"name":"@babel/core","version":"7.23.0","dependencies":{"@babel/parser":"^7.23.0"}}`,
		"/left-pad/latest":        `{"name":"left-pad","version":"1.3.0"}`,
	})
	c := newTestNpmClient(server)

	res, err := c.Lookup(context.Background(), "@babel/core", "^7.0.0")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if res.Version != "7.23.0" {
		t.Errorf("resolved version = %q, want 7.23.0", res.Version)
	}
	if len(res.Dependencies) != 1 || res.Dependencies[0].Name != "@babel/parser" {
		t.Errorf("Lookup() dependencies = %v", res.Dependencies)
	}

	res, err = c.Lookup(context.Background(), "left-pad", "")
	if err != nil {
		t.Fatalf("Lookup(latest) error: %v", err)
	}
	if res.Version != "1.3.0" {
		t.Errorf("resolved latest = %q, want 1.3.0", res.Version)
	}
	if len(res.Dependencies) != 0 {
		t.Errorf("left-pad has no dependencies, got %v", res.Dependencies)
	}
}

func TestLookupNotFound(t *testing.T) {
	server := newTestServer(t, nil)
	c := newTestNpmClient(server)

	_, err := c.Lookup(context.Background(), "missing", "1.0.0")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if !errs.Is(err, errs.ErrCodePackageNotFound) {
		t.Errorf("code = %s, want %s", errs.GetCode(err), errs.ErrCodePackageNotFound)
	}
}

func TestLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	c := newTestNpmClient(server)

	_, err := c.Lookup(context.Background(), "express", "4.18.2")
	if !errs.Is(err, errs.ErrCodeNetwork) {
		t.Errorf("code = %s, want %s", errs.GetCode(err), errs.ErrCodeNetwork)
	}
}

func TestLookupCanceledIsNotWrapped(t *testing.T) {
	server := newTestServer(t, map[string]string{"/express/1.0.0": expressManifest})
	c := newTestNpmClient(server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "express", "1.0.0")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if errs.GetCode(err) != "" {
		t.Errorf("cancellation should not carry a code, got %s", errs.GetCode(err))
	}
}

func TestLookupInvalidName(t *testing.T) {
	c := NewClient("", nil)
	if c.BaseURL() != DefaultRegistry {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultRegistry)
	}
	_, err := c.Lookup(context.Background(), "../etc/passwd", "1.0.0")
	if !errs.Is(err, errs.ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want invalid package", err)
	}
}

func TestDependencyListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"null", `null`, 0, false},
		{"empty", `{}`, 0, false},
		{"two", `{"a":"1","b":"2"}`, 2, false},
		{"array", `["a"]`, 0, true},
		{"non-string version", `{"a":1}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l dependencyList
			err := l.UnmarshalJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(l) != tt.want {
				t.Errorf("len = %d, want %d", len(l), tt.want)
			}
		})
	}
}
