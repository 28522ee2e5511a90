// Package cms reads products and site settings from the Prismic content repository.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coteroyale/storefront/internal/patterns"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const pageSize = 100

// fetchTimeout bounds a shared fetch, including every page of a paginated query.
const fetchTimeout = patterns.DetachedTimeout

// ErrDocumentNotFound is returned when a singleton document does not exist for a locale.
var ErrDocumentNotFound = errors.New("document not found")

// APIError is a non-2xx answer from the content API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms returned status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	// Repository is the Prismic repository name, used when Endpoint is empty.
	Repository string
	// Endpoint overrides the API root, e.g. https://cote-royale.cdn.prismic.io/api/v2.
	Endpoint    string
	AccessToken string
	// RefTTL is how long the master ref is reused before it is looked up again.
	RefTTL  time.Duration
	Timeout time.Duration
}

// Client talks to the Prismic REST API v2.
type Client struct {
	http     *resty.Client
	endpoint string
	token    string
	refTTL   time.Duration
	circuit  *patterns.CircuitBreakerWrapper
	group    singleflight.Group
	now      func() time.Time

	mu         sync.RWMutex
	ref        string
	refExpires time.Time
}

// NewClient creates a content API client.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.cdn.prismic.io/api/v2", cfg.Repository)
	}
	if cfg.RefTTL <= 0 {
		cfg.RefTTL = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = patterns.DefaultTimeout
	}

	return &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(0),
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    cfg.AccessToken,
		refTTL:   cfg.RefTTL,
		circuit:  patterns.NewCircuitBreaker("CMS", "storefront-api", patterns.BreakerSettings{}, isSuccessful),
		now:      time.Now,
	}
}

// isSuccessful keeps cancelled calls and rejected queries from opening the breaker.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
		apiErr.StatusCode != http.StatusTooManyRequests
}

// shared runs fn once for all concurrent callers using key. fn gets a context that outlives
// any single caller; each caller stops waiting when its own ctx is done.
func (c *Client) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, bool, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}

type apiInfo struct {
	Refs []struct {
		ID          string `json:"id"`
		Ref         string `json:"ref"`
		IsMasterRef bool   `json:"isMasterRef"`
	} `json:"refs"`
}

type searchResponse struct {
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Results    []document `json:"results"`
}

type document struct {
	ID   string          `json:"id"`
	UID  string          `json:"uid"`
	Type string          `json:"type"`
	Lang string          `json:"lang"`
	Data json.RawMessage `json:"data"`
}

// masterRef returns the cached master ref, refreshing it once per TTL. Concurrent
// refreshes share one request.
func (c *Client) masterRef(ctx context.Context) (string, error) {
	c.mu.RLock()
	ref, expires := c.ref, c.refExpires
	c.mu.RUnlock()
	if ref != "" && c.now().Before(expires) {
		return ref, nil
	}

	v, _, err := c.shared(ctx, "master-ref", func(ctx context.Context) (interface{}, error) {
		var info apiInfo
		if err := c.get(ctx, c.endpoint, nil, &info); err != nil {
			return "", fmt.Errorf("fetch master ref: %w", err)
		}
		for _, r := range info.Refs {
			if r.IsMasterRef {
				c.mu.Lock()
				c.ref = r.Ref
				c.refExpires = c.now().Add(c.refTTL)
				c.mu.Unlock()
				return r.Ref, nil
			}
		}
		return "", errors.New("fetch master ref: no master ref in API response")
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// query runs a document search and follows pagination. Identical concurrent queries share
// one upstream round trip.
func (c *Client) query(ctx context.Context, lang string, predicates ...string) ([]document, error) {
	ref, err := c.masterRef(ctx)
	if err != nil {
		return nil, err
	}

	q := "[" + strings.Join(wrap(predicates), "") + "]"
	key := strings.Join([]string{ref, lang, q}, "|")

	v, shared, err := c.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		var docs []document
		for page := 1; ; page++ {
			var res searchResponse
			params := map[string]string{
				"ref":      ref,
				"q":        q,
				"lang":     lang,
				"pageSize": fmt.Sprint(pageSize),
				"page":     fmt.Sprint(page),
			}
			if err := c.get(ctx, c.endpoint+"/documents/search", params, &res); err != nil {
				return nil, fmt.Errorf("search documents: %w", err)
			}
			docs = append(docs, res.Results...)
			if res.Page >= res.TotalPages || len(res.Results) == 0 {
				return docs, nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.WithField("query", q).Debug("Shared in-flight CMS query")
	}
	return v.([]document), nil
}

func (c *Client) get(ctx context.Context, url string, params map[string]string, out interface{}) error {
	_, err := c.circuit.Execute(func() (interface{}, error) {
		req := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json")
		if c.token != "" {
			req.SetQueryParam("access_token", c.token)
		}
		if params != nil {
			req.SetQueryParams(params)
		}

		resp, httpErr := req.Get(url)
		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}

		if resp.StatusCode() != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		return nil, nil
	})
	return err
}

func wrap(predicates []string) []string {
	out := make([]string, len(predicates))
	for i, p := range predicates {
		out[i] = "[" + p + "]"
	}
	return out
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
