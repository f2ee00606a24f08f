package geo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

const statesCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ST_NM": "Goa"}, "geometry": {"type": "Polygon", "coordinates": [[[73.6, 15.7], [74.3, 15.7], [74.3, 14.9], [73.6, 15.7]]]}},
    {"type": "Feature", "properties": {"ST_NM": "Andaman & Nicobar Island"}, "geometry": {"type": "Polygon", "coordinates": []}},
    {"type": "Feature", "properties": {"NAME": "unnamed"}, "geometry": null}
  ]
}`

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(t *testing.T, status int, body string, calls *atomic.Int32) *Client {
	t.Helper()
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if calls != nil {
			calls.Add(1)
		}
		if req.URL.String() != "http://geo.test/india_states.geojson" {
			t.Fatalf("unexpected URL %q", req.URL.String())
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("http://geo.test/india_states.geojson", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchBoundariesIndexesByProperty(t *testing.T) {
	client := stubClient(t, http.StatusOK, statesCollection, nil)

	boundaries, err := client.FetchBoundaries(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if boundaries.Len() != 2 {
		t.Fatalf("expected two named features, got %d", boundaries.Len())
	}
	if boundaries.FeatureIDKey() != "properties.ST_NM" {
		t.Fatalf("unexpected feature id key %q", boundaries.FeatureIDKey())
	}
	if got := boundaries.Names(); got[0] != "Andaman & Nicobar Island" || got[1] != "Goa" {
		t.Fatalf("unexpected names %v", got)
	}

	name, feature, ok := boundaries.Region("Goa")
	if !ok || name != "Goa" || !strings.Contains(string(feature), "Polygon") {
		t.Fatalf("exact lookup failed: %q %v", name, ok)
	}
	name, _, ok = boundaries.Region("goa")
	if !ok || name != "Goa" {
		t.Fatalf("case-insensitive lookup failed: %q %v", name, ok)
	}
	name, _, ok = boundaries.Region("andaman-&-nicobar-island")
	if !ok || name != "Andaman & Nicobar Island" {
		t.Fatalf("hyphenated lookup failed: %q %v", name, ok)
	}
	if _, _, ok := boundaries.Region("ladakh"); ok {
		t.Fatalf("unexpected match for missing region")
	}
}

func TestFetchBoundariesCustomProperty(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(statesCollection)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("http://geo.test/x", WithHTTPClient(&http.Client{Transport: rt}), WithFeatureProperty("NAME"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	boundaries, err := client.FetchBoundaries(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if boundaries.Len() != 1 || boundaries.FeatureIDKey() != "properties.NAME" {
		t.Fatalf("unexpected boundaries %v", boundaries.Names())
	}
}

func TestFetchBoundariesErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"bad status", http.StatusNotFound, "404: Not Found"},
		{"bad json", http.StatusOK, "{"},
		{"not a collection", http.StatusOK, `{"type":"Feature"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := stubClient(t, tc.status, tc.body, nil)
			_, err := client.FetchBoundaries(context.Background())
			if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
				t.Fatalf("expected dependency error, got %v", err)
			}
		})
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

type flakyFetcher struct {
	calls atomic.Int32
	fail  atomic.Bool
	inner *Client
}

func (f *flakyFetcher) FetchBoundaries(ctx context.Context) (*Boundaries, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, errors.New("network unreachable")
	}
	return f.inner.FetchBoundaries(ctx)
}

func TestResolverMemoizesSuccessOnly(t *testing.T) {
	fetcher := &flakyFetcher{inner: stubClient(t, http.StatusOK, statesCollection, nil)}
	fetcher.fail.Store(true)
	resolver := NewResolver(fetcher)
	ctx := context.Background()

	if _, err := resolver.Boundaries(ctx); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	fetcher.fail.Store(false)
	first, err := resolver.Boundaries(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	second, err := resolver.Boundaries(ctx)
	if err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	if first != second {
		t.Fatalf("expected the memoized boundary set")
	}
	if fetcher.calls.Load() != 2 {
		t.Fatalf("expected two fetch attempts, got %d", fetcher.calls.Load())
	}
}
