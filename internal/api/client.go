// Package api is the read-only client for the remote catalog collaborator
// (a dummyjson-style product API).
//
// The catalog is presentation input, not state the client owns, so every
// transport or decode failure degrades to the documented empty-result
// shape and is logged rather than surfaced: the query engine treats a
// failed fetch exactly like an empty page.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/merch/internal/catalog"
)

// DefaultBaseURL is the production catalog endpoint.
const DefaultBaseURL = "https://dummyjson.com/products"

// Client fetches catalog data. Zero-value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a catalog client for the given base URL. An empty baseURL
// selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProducts retrieves one page of products.
//
// search and category are mutually exclusive per request; search takes
// precedence when both are set. The sentinel category "all" (or empty)
// means no category filter. Every returned product is enriched with
// variant options.
//
// Failures degrade to an empty page; the error is logged, never returned.
func (c *Client) FetchProducts(ctx context.Context, skip, limit int, category, search string) catalog.Page {
	endpoint := c.baseURL
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))

	switch {
	case search != "":
		endpoint += "/search"
		params.Set("q", search)
	case category != "" && category != "all":
		endpoint += "/category/" + url.PathEscape(category)
	}

	var payload struct {
		Products []catalog.Product `json:"products"`
		Total    int               `json:"total"`
	}
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &payload); err != nil {
		c.logger.Warn("product fetch failed, degrading to empty page", "error", err)
		return catalog.EmptyPage()
	}

	enriched := make([]catalog.Product, len(payload.Products))
	for i, p := range payload.Products {
		enriched[i] = catalog.Enrich(p)
	}
	return catalog.Page{Products: enriched, Total: payload.Total}
}

// FetchProductByID retrieves a single product, enriched. Returns false if
// the product is absent or the fetch failed.
func (c *Client) FetchProductByID(ctx context.Context, id int) (catalog.Product, bool) {
	var p catalog.Product
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%d", c.baseURL, id), &p); err != nil {
		c.logger.Warn("product lookup failed", "id", id, "error", err)
		return catalog.Product{}, false
	}
	return catalog.Enrich(p), true
}

// FetchCategories retrieves the category token list. The remote serves
// either bare strings or {slug, name} objects; both are accepted.
// Failures degrade to an empty list.
func (c *Client) FetchCategories(ctx context.Context) []string {
	var raw []json.RawMessage
	if err := c.getJSON(ctx, c.baseURL+"/categories", &raw); err != nil {
		c.logger.Warn("category fetch failed, degrading to empty list", "error", err)
		return []string{}
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Slug string `json:"slug"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil {
			if obj.Slug != "" {
				out = append(out, obj.Slug)
			} else if obj.Name != "" {
				out = append(out, obj.Name)
			}
		}
	}
	return out
}

// getJSON performs one GET and decodes the response body into v.
// Each request carries a UUIDv7 request id for log correlation.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.Must(uuid.NewV7()).String()
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("catalog request", "url", rawURL, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", requestID, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("request %s: decode: %w", requestID, err)
	}
	return nil
}
