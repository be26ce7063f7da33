// Package client implements the HTTP client for the catalog API: the consumed
// side of the Catalog Provider contract.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fornero/pizzeria-storefront/internal/catalog"
)

// StatusError is returned for non-2xx API responses, carrying the decoded
// error message when the server supplied one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog api: unexpected status %d", e.StatusCode)
}

// Client talks to the catalog API. Requests are traced via otelhttp.
//
// Debouncing of interactive search input is the caller's responsibility
// (see pkg/debounce); the client only guards the minimum term length.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The otelhttp transport
// is layered on top of the given client's transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Transport = otelhttp.NewTransport(c.http.Transport)
	return c
}

// GetFullMenu fetches the complete catalog: active categories with their
// available products embedded.
func (c *Client) GetFullMenu(ctx context.Context) (*catalog.Menu, error) {
	var menu catalog.Menu
	if err := c.get(ctx, "/api/menu", nil, &menu); err != nil {
		return nil, errors.Wrap(err, "get full menu")
	}
	return &menu, nil
}

// ProductsByCategory fetches the products of one category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64, includeUnavailable bool) ([]catalog.Product, error) {
	q := url.Values{}
	if includeUnavailable {
		q.Set("includeUnavailable", "true")
	}

	var products []catalog.Product
	path := "/api/menu/categories/" + strconv.FormatInt(categoryID, 10) + "/products"
	if err := c.get(ctx, path, q, &products); err != nil {
		return nil, errors.Wrapf(err, "get products for category %d", categoryID)
	}
	return products, nil
}

// SearchProducts queries the catalog by name or description. Terms shorter
// than catalog.MinSearchTermLength are short-circuited to an empty result
// without issuing a request, matching the reference UI which never queries
// below the threshold.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]catalog.Product, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < catalog.MinSearchTermLength {
		return nil, nil
	}

	q := url.Values{}
	q.Set("term", term)

	var products []catalog.Product
	if err := c.get(ctx, "/api/menu/search", q, &products); err != nil {
		return nil, errors.Wrapf(err, "search products %q", term)
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			statusErr.Message = body.Message
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
