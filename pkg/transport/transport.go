// Package transport provides the HTTP client shared by the review workflow
// variants: JSON POST, multipart upload, and binary download against a
// configured base URL. Every failure surfaces as *Error; the package never
// retries and never interprets response bodies beyond the server's
// structured error field.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// serverError is the structured error payload the backend attaches to
// non-2xx responses.
type serverError struct {
	Error string `json:"error"`
}

// Client issues HTTP requests against a single backend. It is stateless
// apart from its configuration and safe for concurrent use.
type Client struct {
	hc     *http.Client
	logger *slog.Logger
}

// Config holds transport-level parameters. Timeout policy lives here, not in
// the workflow core: stage contracts treat a timeout like any other
// transport failure.
type Config struct {
	Timeout string `toml:"timeout"`
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// Finalize applies defaults and validates the timeout format.
func (c *Config) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// New creates a transport client from the given configuration.
func New(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		hc:     &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "transport"),
	}
}

// PostJSON sends body as a JSON POST to url and decodes the response into
// out. A nil out discards the response body after the status check.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: "post", URL: url, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &Error{Op: "post", URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do("post", req, out)
}

// Upload sends a single file as a multipart form POST to url, under the
// form field "file", and decodes the response into out.
func (c *Client) Upload(ctx context.Context, url, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return &Error{Op: "upload", URL: url, Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return &Error{Op: "upload", URL: url, Err: fmt.Errorf("read payload: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return &Error{Op: "upload", URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return &Error{Op: "upload", URL: url, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do("upload", req, out)
}

// Get issues a GET to url and returns the response body stream. The caller
// must close the reader. Used for artifact downloads.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Op: "get", URL: url, Err: err}
	}
	req.Header.Set(headerRequestID, uuid.NewString())

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &Error{Op: "get", URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.statusError("get", url, resp)
	}
	return resp.Body, nil
}

func (c *Client) do(op string, req *http.Request, out any) error {
	id := uuid.NewString()
	req.Header.Set(headerRequestID, id)

	c.logger.Debug("request", "op", op, "url", req.URL.String(), "request_id", id)

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Error("request failed", "op", op, "url", req.URL.String(), "request_id", id, "error", err)
		return &Error{Op: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := c.statusError(op, req.URL.String(), resp)
		c.logger.Error("request rejected", "op", op, "url", req.URL.String(), "request_id", id, "status", resp.StatusCode)
		return terr
	}

	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, URL: req.URL.String(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) statusError(op, url string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	terr := &Error{Op: op, URL: url, StatusCode: resp.StatusCode, Body: body}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var se serverError
		if err := json.Unmarshal(body, &se); err == nil {
			terr.ServerMessage = se.Error
		}
	}
	return terr
}
