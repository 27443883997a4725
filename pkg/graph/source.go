package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fadegraph/pkg/cache"
	"github.com/matzehuels/fadegraph/pkg/errors"
	"github.com/matzehuels/fadegraph/pkg/observability"
)

// Source loads graph definitions.
type Source interface {
	// Load fetches and decodes the definitions. Failures carry code LOAD.
	Load(ctx context.Context) ([]Definition, error)

	// String names the source for logs.
	String() string
}

// Open returns the source for location: an [HTTPSource] for http(s) URLs,
// otherwise a [FileSource]. c and logger are only used by HTTP sources and
// may be nil.
func Open(location string, c cache.Cache, logger *log.Logger) (Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, c, logger), nil
	}
	if err := errors.ValidateSourcePath(location); err != nil {
		return nil, err
	}
	return FileSource{Path: location}, nil
}

// =============================================================================
// FileSource
// =============================================================================

// FileSource reads definitions from a local file.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (s FileSource) Load(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "load %s", s.Path)
	}
	return ReadDefinitionsFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

// =============================================================================
// StaticSource
// =============================================================================

// StaticSource serves definitions that are already in memory.
type StaticSource []Definition

// Load returns a copy of the definitions.
func (s StaticSource) Load(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "load static graph")
	}
	out := make([]Definition, len(s))
	copy(out, s)
	return out, nil
}

func (s StaticSource) String() string { return fmt.Sprintf("static(%d nodes)", len(s)) }

// =============================================================================
// HTTPSource
// =============================================================================

// Defaults for [HTTPSource].
const (
	DefaultHTTPTimeout = 10 * time.Second
	DefaultCacheTTL    = time.Hour
	defaultAttempts    = 3
	defaultRetryDelay  = time.Second
)

// HTTPSource fetches a definition document over HTTP.
//
// Responses are stored in Cache under [cache.SourceKey] for TTL. Network
// failures and 5xx responses are retried with exponential backoff; 4xx
// responses fail immediately.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	Cache    cache.Cache
	TTL      time.Duration
	Logger   *log.Logger
	Attempts int
	Delay    time.Duration
}

// NewHTTPSource creates an HTTP source with default client, TTL and retry
// policy. A nil cache disables caching; a nil logger uses log.Default().
func NewHTTPSource(rawURL string, c cache.Cache, logger *log.Logger) *HTTPSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPSource{
		URL:      rawURL,
		Client:   &http.Client{Timeout: DefaultHTTPTimeout},
		Cache:    c,
		TTL:      DefaultCacheTTL,
		Logger:   logger,
		Attempts: defaultAttempts,
		Delay:    defaultRetryDelay,
	}
}

func (s *HTTPSource) String() string { return s.URL }

// Load returns the cached document if present, otherwise fetches it.
func (s *HTTPSource) Load(ctx context.Context) ([]Definition, error) {
	if err := errors.ValidateURL(s.URL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "load %s", s.URL)
	}
	format := FormatFromPath(urlPath(s.URL))
	key := cache.SourceKey(s.URL)

	if data, hit, err := s.Cache.Get(ctx, key); err != nil {
		s.Logger.Warn("cache read failed", "source", s.URL, "error", err)
	} else if hit {
		defs, err := ReadDefinitions(bytes.NewReader(data), format)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "source")
			s.Logger.Debug("graph source cache hit", "source", s.URL)
			return defs, nil
		}
		s.Logger.Warn("discarding unreadable cache entry", "source", s.URL, "error", err)
		_ = s.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	var body []byte
	err := cache.Retry(ctx, s.Attempts, s.Delay, func() error {
		var ferr error
		body, ferr = s.fetch(ctx)
		if ferr != nil && cache.IsRetryable(ferr) {
			s.Logger.Debug("retrying graph fetch", "source", s.URL, "error", ferr)
		}
		return ferr
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "fetch %s", s.URL)
	}

	defs, err := ReadDefinitions(bytes.NewReader(body), format)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, key, body, s.TTL); err != nil {
		s.Logger.Warn("cache write failed", "source", s.URL, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "source", len(body))
	}
	return defs, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := s.Client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, cache.ErrNotFound
	case resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read body: %v", cache.ErrNetwork, err))
	}
	return body, nil
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
