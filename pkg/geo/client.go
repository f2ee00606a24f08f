package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

const (
	defaultFeatureProperty       = "ST_NM"
	defaultTimeout               = 15 * time.Second
	responseBodyReadLimit  int64 = 1024
)

var errURLRequired = errors.New("geojson url is required")

// Client downloads region boundaries from a GeoJSON FeatureCollection.
type Client struct {
	httpClient *http.Client
	url        string
	property   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithFeatureProperty selects the feature property holding the region name.
func WithFeatureProperty(property string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(property)
		if trimmed != "" {
			c.property = trimmed
		}
	}
}

// WithTimeout bounds the download when the default HTTP client is used.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(url string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, errURLRequired
	}

	client := &Client{
		url:        trimmed,
		property:   defaultFeatureProperty,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// FetchBoundaries downloads the collection and indexes features by the
// configured name property. Features without that property are skipped.
func (c *Client) FetchBoundaries(ctx context.Context) (*Boundaries, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geo client not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build boundaries request")
	}
	httpReq.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute boundaries request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "boundaries request failed")
	}

	var collection struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode boundaries response")
	}
	if collection.Type != "FeatureCollection" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "boundaries document is not a FeatureCollection").
			WithDetails(map[string]any{"type": collection.Type})
	}

	boundaries := newBoundaries(c.property)
	for _, raw := range collection.Features {
		var feature struct {
			Properties map[string]any `json:"properties"`
		}
		if err := json.Unmarshal(raw, &feature); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode boundary feature")
		}
		name, ok := feature.Properties[c.property].(string)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		boundaries.add(name, raw)
	}
	return boundaries, nil
}
