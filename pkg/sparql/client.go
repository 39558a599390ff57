package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxResponseSize bounds a single result page read into memory.
const maxResponseSize = 64 * 1024 * 1024

// RetryConfig controls the bounded exponential backoff applied to transient
// upstream failures.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per query.
	MaxAttempts int

	// BaseDelay is the initial backoff; attempt n waits BaseDelay * 2^(n-1).
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the retry policy used against the vocabulary
// endpoint: three attempts, one second base delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Binding is one (concept, property, value) row from a data query, with the
// optional language tag of the value literal.
type Binding struct {
	Concept  string
	Property string
	Value    string
	Lang     string
}

// Client executes SPARQL queries against a JSON-bindings HTTP endpoint.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Retry      RetryConfig
	Logger     *slog.Logger
}

// NewClient creates a client for the given endpoint with default retry policy.
func NewClient(endpoint string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Retry:      DefaultRetryConfig(),
		Logger:     logger,
	}
}

// sparqlResults models the W3C SPARQL 1.1 JSON results format.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Type    string `json:"type"`
			Value   string `json:"value"`
			XMLLang string `json:"xml:lang"`
		} `json:"bindings"`
	} `json:"results"`
}

// MemberCount runs the count query and returns the number of distinct
// collection members.
func (c *Client) MemberCount(ctx context.Context, collectionURI string) (int, error) {
	res, err := c.queryWithRetry(ctx, CountQuery(collectionURI))
	if err != nil {
		return 0, err
	}
	if len(res.Results.Bindings) == 0 {
		return 0, fmt.Errorf("count query returned no bindings")
	}
	cell, ok := res.Results.Bindings[0]["count"]
	if !ok {
		return 0, fmt.Errorf("count query returned no ?count binding")
	}
	n, err := strconv.Atoi(cell.Value)
	if err != nil {
		return 0, fmt.Errorf("count query returned non-numeric count %q", cell.Value)
	}
	return n, nil
}

// FetchPage runs one paginated data query and returns its bindings in result
// order. Rows missing a concept or property cell are dropped.
func (c *Client) FetchPage(ctx context.Context, collectionURI string, properties []string, limit, offset int) ([]Binding, error) {
	res, err := c.queryWithRetry(ctx, DataQuery(collectionURI, properties, limit, offset))
	if err != nil {
		return nil, err
	}
	out := make([]Binding, 0, len(res.Results.Bindings))
	for _, row := range res.Results.Bindings {
		b := Binding{
			Concept:  row["concept"].Value,
			Property: row["property"].Value,
			Value:    row["value"].Value,
			Lang:     row["value"].XMLLang,
		}
		if b.Concept == "" || b.Property == "" {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// queryWithRetry runs a query, retrying transient failures with exponential
// backoff. The loop operates purely on the transient/fatal classification of
// the returned error; exhaustion escalates the last transient error to fatal.
func (c *Client) queryWithRetry(ctx context.Context, query string) (*sparqlResults, error) {
	var lastErr error

	for attempt := 1; attempt <= c.Retry.MaxAttempts; attempt++ {
		res, err := c.doQuery(ctx, query)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}

		if attempt < c.Retry.MaxAttempts {
			backoff := c.Retry.BaseDelay << (attempt - 1)
			c.Logger.Warn("transient endpoint failure, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.Retry.MaxAttempts),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, NewFatalError(fmt.Errorf("query failed after %d attempts: %w", c.Retry.MaxAttempts, lastErr))
}

// doQuery executes a single HTTP request and classifies any failure.
func (c *Client) doQuery(ctx context.Context, query string) (*sparqlResults, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Network errors are transient.
		return nil, NewTransientError(fmt.Errorf("query endpoint: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, NewTransientError(fmt.Errorf("query endpoint returned %s", resp.Status))
	default:
		return nil, NewFatalError(fmt.Errorf("query endpoint returned %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	var res sparqlResults
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, NewFatalError(fmt.Errorf("decode bindings: %w", err))
	}
	return &res, nil
}
