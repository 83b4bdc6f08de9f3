// Package api is the REST adapter for a hosted document store. It satisfies
// catalog.Documents so the rest of flowr can run against a remote backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowr-app/flowr/internal/catalog"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "flowr-cli"
)

var _ catalog.Documents = (*Client)(nil)

// Client is an HTTP client for the document API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a document API client. A zero timeout uses the default.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// Get fetches one document.
func (c *Client) Get(ctx context.Context, collection, id string) (catalog.Record, error) {
	var rec catalog.Record
	if err := c.do(ctx, http.MethodGet, c.documentURL(collection, id), nil, &rec); err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", collection, id, err)
	}
	if rec == nil {
		rec = catalog.Record{}
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = id
	}
	return rec, nil
}

// Query lists a collection, filtered server-side by where clauses.
func (c *Client) Query(ctx context.Context, collection string, where ...catalog.Where) ([]catalog.Record, error) {
	reqURL := c.collectionURL(collection)
	if len(where) > 0 {
		params := url.Values{}
		for _, w := range where {
			params.Add("where", FormatWhere(w))
		}
		reqURL += "?" + params.Encode()
	}

	var resp DocumentsResponse
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	return resp.Documents, nil
}

// Put creates or replaces a document.
func (c *Client) Put(ctx context.Context, collection, id string, rec catalog.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	if err := c.do(ctx, http.MethodPut, c.documentURL(collection, id), body, nil); err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.documentURL(collection, id), nil, nil); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) collectionURL(collection string) string {
	parts := strings.Split(strings.Trim(collection, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(parts, "/")
}

func (c *Client) documentURL(collection, id string) string {
	return c.collectionURL(collection) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, reqURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Method: method, URL: reqURL}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding response: trailing JSON content")
	}
	return nil
}
