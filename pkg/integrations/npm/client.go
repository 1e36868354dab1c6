package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackdiff/pkg/deps"
	errs "github.com/matzehuels/stackdiff/pkg/errors"
	"github.com/matzehuels/stackdiff/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// Manifest is the resolved package.json of one published version.
type Manifest struct {
	Name         string
	Version      string
	Description  string
	License      string
	Dependencies []deps.Module
}

// Client fetches manifests from an npm-compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a Client for the registry at baseURL. An empty baseURL
// uses [DefaultRegistry]; a nil logger uses log.Default().
func NewClient(baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Client:  integrations.NewClient(nil),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// BaseURL returns the registry URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Lookup resolves version against the registry and returns the resolved
// version with its direct dependencies.
func (c *Client) Lookup(ctx context.Context, name, version string) (deps.Resolution, error) {
	m, err := c.Manifest(ctx, name, version)
	if err != nil {
		return deps.Resolution{}, err
	}
	return deps.Resolution{Version: m.Version, Dependencies: m.Dependencies}, nil
}

// Manifest fetches the manifest of name at version. The version may be a
// range or dist-tag; the registry picks the matching version.
func (c *Client) Manifest(ctx context.Context, name, version string) (*Manifest, error) {
	if err := errs.ValidatePackageName(name); err != nil {
		return nil, err
	}
	if version == "" {
		version = "latest"
	}

	endpoint := c.baseURL + "/" + integrations.PathEscape(name) + "/" + url.PathEscape(version)
	c.logger.Debug("fetching manifest", "package", name, "version", version)

	var data versionResponse
	if err := c.Get(ctx, endpoint, &data); err != nil {
		return nil, classify(err, name, version)
	}

	return &Manifest{
		Name:         data.Name,
		Version:      data.Version,
		Description:  data.Description,
		License:      extractField(data.License, "type"),
		Dependencies: data.Dependencies,
	}, nil
}

// classify turns a transport error into a coded error. Context errors are
// returned unchanged so callers can tell cancellation from failure.
func classify(err error, name, version string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, integrations.ErrNotFound):
		return errs.Wrap(errs.ErrCodePackageNotFound, err, "npm package %s@%s not found", name, version)
	case errors.Is(err, integrations.ErrRateLimited):
		return errs.Wrap(errs.ErrCodeRateLimited, err, "npm registry rate limit hit for %s@%s", name, version)
	case errors.Is(err, integrations.ErrNetwork):
		return errs.Wrap(errs.ErrCodeNetwork, err, "npm registry unreachable for %s@%s", name, version)
	default:
		return errs.Wrap(errs.ErrCodeLookupFailed, err, "lookup %s@%s", name, version)
	}
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type versionResponse struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Description  string         `json:"description"`
	License      any            `json:"license"`
	Dependencies dependencyList `json:"dependencies"`
}

// dependencyList decodes a package.json dependency object into modules,
// keeping the key order of the document.
type dependencyList []deps.Module

func (l *dependencyList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("dependencies: expected object, got %v", tok)
	}

	var out dependencyList
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("dependencies: unexpected key %v", tok)
		}
		var version string
		if err := dec.Decode(&version); err != nil {
			return fmt.Errorf("dependency %s: %w", name, err)
		}
		out = append(out, deps.Module{Name: name, Version: version})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}
