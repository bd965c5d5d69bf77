package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

const (
	defaultTimeout     = 30 * time.Second
	maxRenderedPDFSize = 16 << 20
	errorBodyReadLimit = 8 << 10
)

// Client calls the external HTML-to-PDF renderer.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a renderer client from config.
func NewClient(cfg config.PDFConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.RendererURL)
	if baseURL == "" {
		return nil, fmt.Errorf("pdf renderer url is required")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Render turns an HTML document into PDF bytes.
func (c *Client) Render(ctx context.Context, html string) ([]byte, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pdf renderer not configured")
	}
	if strings.TrimSpace(html) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "html document is required")
	}

	payload, err := json.Marshal(map[string]string{"html": html})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal render payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build render request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute render request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"pdf render failed")
	}

	document, err := io.ReadAll(io.LimitReader(resp.Body, maxRenderedPDFSize))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read rendered pdf")
	}
	return document, nil
}
