// Package notion is a minimal client for the Notion REST API: it discovers a
// database's title property, creates pages, and appends child blocks. No
// Go SDK is used; payloads are built by hand against the 2022-06-28 API
// version.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// apiVersion is sent as the Notion-Version header.
	apiVersion = "2022-06-28"
)

// APIError carries a non-2xx Notion response. Message is the remote-provided
// error text when the body was parseable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("notion: request failed with status %d", e.Status)
}

// Storage is the document-storage surface the capture pipeline depends on.
type Storage interface {
	GetTitleProperty(ctx context.Context, databaseID string) (string, error)
	CreatePage(ctx context.Context, databaseID, titleProperty, title string, children []Block) (string, error)
	AppendBlocks(ctx context.Context, pageID string, blocks []Block) error
}

// Client implements Storage over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint, e.g. for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Notion client authenticated with an integration token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTitleProperty fetches the database schema and returns the name of its
// title property.
func (c *Client) GetTitleProperty(ctx context.Context, databaseID string) (string, error) {
	var schema struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &schema); err != nil {
		return "", err
	}

	for name, prop := range schema.Properties {
		if prop.Type == "title" {
			return name, nil
		}
	}
	return "", fmt.Errorf("notion: database %s has no title property", databaseID)
}

// CreatePage creates a page in the database with the given title and initial
// child blocks, returning the new page id.
func (c *Client) CreatePage(ctx context.Context, databaseID, titleProperty, title string, children []Block) (string, error) {
	body := map[string]any{
		"parent": map[string]any{"database_id": databaseID},
		"properties": map[string]any{
			titleProperty: map[string]any{
				"title": []map[string]any{
					{"text": map[string]any{"content": title}},
				},
			},
		},
		"children": children,
	}

	var page struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return "", err
	}
	return page.ID, nil
}

// AppendBlocks appends child blocks to an existing page.
func (c *Client) AppendBlocks(ctx context.Context, pageID string, blocks []Block) error {
	body := map[string]any{"children": blocks}
	return c.do(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", body, nil)
}

// do performs one request. There is no retry: a network failure or non-2xx
// status is terminal for the calling step.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var remote struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &remote) == nil {
			apiErr.Message = remote.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
