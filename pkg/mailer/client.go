package mailer

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
	defaultTimeout        = 15 * time.Second
	responseBodyReadLimit = 8 << 10
)

// Client posts transactional mail to the external mailer API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	from       string
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

// NewClient builds a mailer client from config.
func NewClient(cfg config.MailerConfig, opts ...Option) (*Client, error) {
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		return nil, fmt.Errorf("mailer api url is required")
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		from:       strings.TrimSpace(cfg.DefaultFrom),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Message is one outbound email. HTML carries the rendered body and
// Attachments inline binary payloads (base64 on the wire).
type Message struct {
	To          string       `json:"to"`
	From        string       `json:"from,omitempty"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a named binary part of a message.
type Attachment struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
	MimeType string `json:"mime_type"`
}

// Send delivers one message. Failures map to CodeDependency so callers
// can tell delivery problems apart from their own bugs.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer client not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if msg.From == "" {
		msg.From = c.from
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build mail request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute mail request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"mail delivery failed")
	}
	return nil
}
