// Package api is the only place mailpilot talks to the assistant backend.
// All failures are normalized into *RequestError; the two email read paths
// degrade to a bundled snapshot when the backend cannot be reached.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ajramos/mailpilot/internal/models"
	"github.com/ajramos/mailpilot/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is used when neither config nor environment provide one
	DefaultBaseURL = "http://localhost:8000"

	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 8 << 20
	maxErrorBody   = 4 << 10
)

// Operation names, used for errors, logs and metrics
const (
	OpIngestEmails  = "ingest_emails"
	OpListEmails    = "list_emails"
	OpGetEmail      = "get_email"
	OpListPrompts   = "list_prompts"
	OpUpdatePrompt  = "update_prompt"
	OpSeedPrompts   = "seed_prompts"
	OpChat          = "chat"
	OpGenerateDraft = "generate_draft"
	OpListDrafts    = "list_drafts"
	OpDeleteDraft   = "delete_draft"
)

// Client is a thin typed wrapper over the backend REST API
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *zap.Logger
	snapshot  *Snapshot
	metrics   *clientMetrics
	userAgent string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for fallback diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSnapshot replaces the bundled fallback snapshot
func WithSnapshot(fsys fs.FS, path string) Option {
	return func(c *Client) {
		c.snapshot = NewSnapshot(fsys, path)
	}
}

// WithMetrics registers request and fallback collectors on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newClientMetrics(reg)
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    zap.NewNop(),
		snapshot:  BundledSnapshot(),
		userAgent: "mailpilot/" + version.GetVersion(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address every path is prefixed with
func (c *Client) BaseURL() string { return c.baseURL }

// IngestEmails asks the backend to pull new mail. The payload is ignored.
func (c *Client) IngestEmails(ctx context.Context) error {
	return c.do(ctx, OpIngestEmails, http.MethodPost, "/api/emails/ingest", nil, nil)
}

// ListEmails returns the inbox, or the snapshot when the backend is unreachable
func (c *Client) ListEmails(ctx context.Context) ([]models.Email, error) {
	var emails []models.Email
	err := c.do(ctx, OpListEmails, http.MethodGet, "/api/emails/", nil, &emails)
	if err == nil {
		if emails == nil {
			emails = []models.Email{}
		}
		return emails, nil
	}
	if !c.shouldFallback(ctx, err) {
		return nil, err
	}
	c.logger.Warn("backend unreachable, serving snapshot inbox",
		zap.String("op", OpListEmails), zap.Error(err))
	emails, snapErr := c.snapshot.Emails()
	c.metrics.fallback(OpListEmails, snapErr)
	if snapErr != nil {
		return nil, snapErr
	}
	return emails, nil
}

// GetEmail returns one email, falling back to the snapshot entry with the same positional id
func (c *Client) GetEmail(ctx context.Context, id string) (*models.Email, error) {
	var email models.Email
	err := c.do(ctx, OpGetEmail, http.MethodGet, "/api/emails/"+url.PathEscape(id), nil, &email)
	if err == nil {
		return &email, nil
	}
	if !c.shouldFallback(ctx, err) {
		return nil, err
	}
	c.logger.Warn("backend unreachable, serving snapshot email",
		zap.String("op", OpGetEmail), zap.String("id", id), zap.Error(err))
	found, snapErr := c.snapshot.Email(id)
	c.metrics.fallback(OpGetEmail, snapErr)
	if snapErr != nil {
		return nil, snapErr
	}
	return found, nil
}

// ListPrompts returns the prompt templates
func (c *Client) ListPrompts(ctx context.Context) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := c.do(ctx, OpListPrompts, http.MethodGet, "/api/prompts/", nil, &prompts); err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = []models.Prompt{}
	}
	return prompts, nil
}

// UpdatePrompt sends a partial update and returns the decoded response body.
// A backend that answers without a prompt yields a zero-valued Prompt.
func (c *Client) UpdatePrompt(ctx context.Context, id string, update models.PromptUpdate) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := c.do(ctx, OpUpdatePrompt, http.MethodPut, "/api/prompts/"+url.PathEscape(id), update, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// SeedPrompts asks the backend to create its default prompts
func (c *Client) SeedPrompts(ctx context.Context) error {
	return c.do(ctx, OpSeedPrompts, http.MethodPost, "/api/prompts/seed", nil, nil)
}

// Chat sends a user utterance with optional email context and returns the agent text
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (string, error) {
	var resp models.ChatResponse
	if err := c.do(ctx, OpChat, http.MethodPost, "/api/agent/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// GenerateDraft asks the agent to write and store a reply draft
func (c *Client) GenerateDraft(ctx context.Context, req models.DraftRequest) (*models.GeneratedDraft, error) {
	var draft models.GeneratedDraft
	if err := c.do(ctx, OpGenerateDraft, http.MethodPost, "/api/agent/draft", req, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListDrafts returns the stored drafts, newest first as ordered by the backend
func (c *Client) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	var drafts []models.Draft
	if err := c.do(ctx, OpListDrafts, http.MethodGet, "/api/agent/drafts", nil, &drafts); err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return drafts, nil
}

// DeleteDraft asks the backend to delete a draft and returns its message
func (c *Client) DeleteDraft(ctx context.Context, id string) (string, error) {
	var res models.DeleteResult
	if err := c.do(ctx, OpDeleteDraft, http.MethodDelete, "/api/agent/drafts/"+url.PathEscape(id), nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// shouldFallback reports whether err means the backend could not serve the
// read. Cancellation by the caller is not a backend failure.
func (c *Client) shouldFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var re *RequestError
	return errors.As(err, &re)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	fail := func(status int, body string, err error) error {
		return &RequestError{Op: op, Method: method, Path: path, Status: status, Body: body, Err: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(0, "", fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start))
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.observe(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, truncate(string(data), maxErrorBody), nil)
	}
	if readErr != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("read response: %w", readErr))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, truncate(string(data), maxErrorBody), fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
