package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
)

const clientTimeout = 10 * time.Second

// Client talks to a remote page-builder backend.
// It serves as the canvas service, the reference catalog and the layout
// suggester of a Studio.
type Client struct {
	base    string
	http    *http.Client
	headers map[string]string
}

var (
	_ ports.CanvasService   = (*Client)(nil)
	_ ports.ReferenceData   = (*Client)(nil)
	_ ports.LayoutSuggester = (*Client)(nil)
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithHeader adds a header sent with every request (e.g. Authorization).
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// NewClient creates a Client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: clientTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func canvasPath(storeID, pageTypeID string) string {
	return "/stores/" + url.PathEscape(storeID) + "/pages/" + url.PathEscape(pageTypeID) + "/canvas"
}

// Fetch implements ports.CanvasService.
func (c *Client) Fetch(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error) {
	var canvas domain.Canvas
	if err := c.do(ctx, http.MethodGet, canvasPath(storeID, pageTypeID), nil, &canvas); err != nil {
		return nil, err
	}
	return &canvas, nil
}

// Save implements ports.CanvasService.
func (c *Client) Save(ctx context.Context, canvas *domain.Canvas) error {
	return c.do(ctx, http.MethodPut, canvasPath(canvas.StoreID, canvas.PageTypeID), canvas, nil)
}

// Publish implements ports.CanvasService.
func (c *Client) Publish(ctx context.Context, canvas *domain.Canvas) error {
	return c.do(ctx, http.MethodPost, canvasPath(canvas.StoreID, canvas.PageTypeID)+"/publish", canvas, nil)
}

// Stores implements ports.ReferenceData.
func (c *Client) Stores(ctx context.Context) ([]domain.Store, error) {
	var out []domain.Store
	return out, c.do(ctx, http.MethodGet, "/stores", nil, &out)
}

// PageTypes implements ports.ReferenceData.
func (c *Client) PageTypes(ctx context.Context) ([]domain.PageType, error) {
	var out []domain.PageType
	return out, c.do(ctx, http.MethodGet, "/page-types", nil, &out)
}

// SectionTemplates implements ports.ReferenceData.
func (c *Client) SectionTemplates(ctx context.Context) ([]domain.SectionTemplate, error) {
	var out []domain.SectionTemplate
	return out, c.do(ctx, http.MethodGet, "/section-templates", nil, &out)
}

// PageSections implements ports.ReferenceData.
func (c *Client) PageSections(ctx context.Context, pageTypeID string) ([]string, error) {
	var m domain.PageSectionMapping
	if err := c.do(ctx, http.MethodGet, "/page-types/"+url.PathEscape(pageTypeID)+"/sections", nil, &m); err != nil {
		return nil, err
	}
	return m.SectionTypes, nil
}

// SectionContent implements ports.ReferenceData.
func (c *Client) SectionContent(ctx context.Context, sectionType string) ([]string, error) {
	var m domain.SectionContentMapping
	if err := c.do(ctx, http.MethodGet, "/section-types/"+url.PathEscape(sectionType)+"/content", nil, &m); err != nil {
		return nil, err
	}
	return m.ContentTypes, nil
}

// Suggest implements ports.LayoutSuggester.
// The response may be a bare array or an object with a "sections" array.
func (c *Client) Suggest(ctx context.Context, req domain.LayoutRequest) ([]domain.SectionDescriptor, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/layout-suggestions", req, &raw); err != nil {
		return nil, err
	}
	return domain.ParseDescriptors(raw)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrTransientFetch, method, path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrTransientFetch, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return domain.ErrCanvasNotFound
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransientFetch, code, strings.TrimSpace(string(msg)))
	}
}
