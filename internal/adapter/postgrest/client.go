// Package postgrest implements store.ContentStore over the Supabase REST
// interface (PostgREST).
package postgrest

import (
	"bytes"
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

	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

const (
	restPath       = "/rest/v1/"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Error codes reported in PostgREST error bodies.
const (
	codeSchemaCacheMiss = "PGRST205"
	codeUndefinedTable  = "42P01"
	codeForeignKey      = "23503"
	codeUniqueViolation = "23505"
)

// Client talks to one Supabase project. It holds no global state; every
// component that needs the store receives the Client (or a wrapper of it).
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	log        *slog.Logger
}

var _ store.ContentStore = (*Client)(nil)

// Options configures a Client.
type Options struct {
	URL     string
	Key     string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// NewClient creates a Client.
func NewClient(logger *slog.Logger, opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("postgrest: %w: url is empty", domain.ErrConfig)
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("postgrest: %w: key is empty", domain.ErrConfig)
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return nil, fmt.Errorf("postgrest: %w: parse url: %v", domain.ErrConfig, err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.URL, "/"),
		key:        opts.Key,
		httpClient: hc,
		log:        logger.With("adapter", "postgrest"),
	}, nil
}

// Upsert inserts rows, merging with existing rows that collide on onConflict.
func (c *Client) Upsert(ctx context.Context, table string, rows []store.Row, onConflict string) ([]store.Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	params := url.Values{}
	if onConflict != "" {
		params.Set("on_conflict", onConflict)
	}
	var out []store.Row
	_, err := c.do(ctx, http.MethodPost, table, params, rows,
		"return=representation,resolution=merge-duplicates", &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert writes rows and returns their stored representation.
func (c *Client) Insert(ctx context.Context, table string, rows []store.Row) ([]store.Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	var out []store.Row
	if _, err := c.do(ctx, http.MethodPost, table, nil, rows, "return=representation", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes matching rows and returns how many were removed. A delete
// without filters is refused.
func (c *Client) Delete(ctx context.Context, table string, filters ...store.Filter) (int, error) {
	if len(filters) == 0 {
		return 0, fmt.Errorf("postgrest: delete %s: %w", table,
			domain.NewValidationError("filters", "at least one filter is required"))
	}
	params := url.Values{}
	if err := encodeFilters(params, filters); err != nil {
		return 0, fmt.Errorf("postgrest: delete %s: %w", table, err)
	}
	resp, err := c.do(ctx, http.MethodDelete, table, params, nil, "return=minimal,count=exact", nil)
	if err != nil {
		return 0, err
	}
	return parseContentRangeTotal(resp.Header.Get("Content-Range")), nil
}

// Select returns rows matching q.
func (c *Client) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	params := url.Values{}
	if err := encodeQuery(params, q); err != nil {
		return nil, fmt.Errorf("postgrest: select %s: %w", table, err)
	}
	var out []store.Row
	if _, err := c.do(ctx, http.MethodGet, table, params, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, table string, params url.Values, body any, prefer string, out any) (*http.Response, error) {
	reqURL := c.baseURL + restPath + url.PathEscape(table)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("postgrest: %s %s: encode body: %w", method, table, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("postgrest: create request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postgrest: %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "postgrest request",
		slog.String("method", method),
		slog.String("table", table),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("postgrest: %s %s: %w", method, table, decodeError(resp))
	}

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("postgrest: %s %s: read body: %w", method, table, err)
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return nil, fmt.Errorf("postgrest: %s %s: decode json: %w", method, table, err)
			}
		}
	}
	return resp, nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// decodeError turns a non-2xx response into a *domain.StatusError, also
// wrapping the store sentinel for the known error codes.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	serr := &domain.StatusError{StatusCode: resp.StatusCode}
	var body apiError
	if err := json.Unmarshal(data, &body); err == nil && (body.Code != "" || body.Message != "") {
		serr.Code = body.Code
		serr.Message = body.Message
		if body.Details != "" {
			serr.Message += ": " + body.Details
		}
	} else {
		serr.Message = strings.TrimSpace(string(data))
		if serr.Message == "" {
			serr.Message = http.StatusText(resp.StatusCode)
		}
	}

	switch serr.Code {
	case codeSchemaCacheMiss, codeUndefinedTable:
		return fmt.Errorf("%w: %w", store.ErrTableNotFound, serr)
	case codeForeignKey:
		return fmt.Errorf("%w: %w", store.ErrForeignKey, serr)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, serr)
	}
	return serr
}

// parseContentRangeTotal reads N from "0-4/N" or "*/N"; unknown totals yield 0.
func parseContentRangeTotal(header string) int {
	i := strings.LastIndexByte(header, '/')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(header[i+1:])
	if err != nil {
		return 0
	}
	return n
}
