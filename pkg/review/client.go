package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"reviewflow/pkg/transport"
)

// Config holds one workflow variant's static configuration. Instances are
// created at startup and immutable thereafter; there is no process-wide
// state.
type Config struct {
	// BaseURL is the variant's API root, without a trailing slash.
	BaseURL string
	// DefaultModel is substituted when an AI call omits the model. Empty
	// means the server chooses (null on the wire); the two variants differ
	// here and the asymmetry is deliberate.
	DefaultModel string
	// Route selects the artifact-generation endpoint policy.
	Route RouteStrategy
	// FallbackSessionID, when non-empty, replaces a missing session
	// identifier on review calls.
	FallbackSessionID string
}

// Client drives one workflow variant. Every call is a stateless function of
// its arguments plus this configuration; session state lives entirely on
// the server and is only threaded through by the caller.
type Client struct {
	cfg    Config
	tp     *transport.Client
	logger *slog.Logger
}

// New creates a workflow client for the given variant configuration.
func New(cfg Config, tp *transport.Client, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	return &Client{
		cfg:    cfg,
		tp:     tp,
		logger: logger.With("system", "review"),
	}, nil
}

// BaseURL returns the variant's configured API root.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

type uploadResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Upload sends a document to the server and returns its handle. The file
// identifier is taken verbatim from the response. No client-side size
// validation is performed; limits are the transport's and server's concern.
func (c *Client) Upload(ctx context.Context, filename string, payload io.Reader) (*FileHandle, error) {
	var resp uploadResponse
	if err := c.tp.Upload(ctx, c.endpoint(pathUpload), filename, payload, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("document uploaded", "file_id", resp.FileID, "file_name", resp.FileName)
	return &FileHandle{FileID: resp.FileID, FileName: resp.FileName}, nil
}

type candidatesRequest struct {
	FileID          string `json:"file_id"`
	FileName        string `json:"file_name"`
	CatalogFileID   string `json:"catalog_file_id"`
	CatalogFileName string `json:"catalog_file_name"`
}

// FetchCandidates requests the candidate requirement items for a source and
// catalog document pair. An empty candidate list is a valid outcome.
func (c *Client) FetchCandidates(ctx context.Context, source, catalog FileHandle) (*CandidateSet, error) {
	req := candidatesRequest{
		FileID:          source.FileID,
		FileName:        source.FileName,
		CatalogFileID:   catalog.FileID,
		CatalogFileName: catalog.FileName,
	}

	var set CandidateSet
	if err := c.tp.PostJSON(ctx, c.endpoint(pathCandidates), req, &set); err != nil {
		return nil, err
	}

	c.logger.Info("candidates fetched", "count", len(set.Candidates), "session_id", set.SessionID)
	return &set, nil
}

type extractRequest struct {
	FileID           string   `json:"file_id"`
	FileName         string   `json:"file_name"`
	RequirementNames []string `json:"requirement_names"`
	CatalogFileID    string   `json:"catalog_file_id"`
	CatalogFileName  string   `json:"catalog_file_name"`
}

// Extract requests full requirement details for the selected candidate
// names using the deterministic extraction path. Unresolved names are a
// server concern; the response passes through unmodified.
func (c *Client) Extract(ctx context.Context, source FileHandle, names []string, catalog FileHandle) (*ExtractResult, error) {
	req := extractRequest{
		FileID:           source.FileID,
		FileName:         source.FileName,
		RequirementNames: names,
		CatalogFileID:    catalog.FileID,
		CatalogFileName:  catalog.FileName,
	}

	var result ExtractResult
	if err := c.tp.PostJSON(ctx, c.endpoint(pathExtract), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type aiExtractRequest struct {
	FileID           string   `json:"file_id"`
	FileName         string   `json:"file_name"`
	RequirementNames []string `json:"requirement_names"`
	Model            *string  `json:"model"`
}

// AIExtract requests requirement details via the AI-assisted extraction
// path. An empty model falls back to the variant's DefaultModel; if that is
// also empty, null goes on the wire and the server picks.
func (c *Client) AIExtract(ctx context.Context, source FileHandle, names []string, model string) (*ExtractResult, error) {
	if names == nil {
		names = []string{}
	}
	req := aiExtractRequest{
		FileID:           source.FileID,
		FileName:         source.FileName,
		RequirementNames: names,
		Model:            c.model(model),
	}

	var result ExtractResult
	if err := c.tp.PostJSON(ctx, c.endpoint(pathAIExtract), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type aiCatalogRequest struct {
	FileID           string  `json:"file_id"`
	FileName         string  `json:"file_name"`
	RequirementLevel int     `json:"requirement_level"`
	Model            *string `json:"model"`
}

// ExtractCatalog asks the server to derive a requirement catalog from the
// source document itself, for workflows without a catalog file. Level
// selects catalog depth; values outside the server's accepted range are
// clamped server-side, zero means the server default.
func (c *Client) ExtractCatalog(ctx context.Context, source FileHandle, level int, model string) (*CandidateSet, error) {
	if level == 0 {
		level = 3
	}
	req := aiCatalogRequest{
		FileID:           source.FileID,
		FileName:         source.FileName,
		RequirementLevel: level,
		Model:            c.model(model),
	}

	var set CandidateSet
	if err := c.tp.PostJSON(ctx, c.endpoint(pathAICatalog), req, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

type rematchRequest struct {
	FileID    string  `json:"file_id"`
	FileName  string  `json:"file_name"`
	SessionID string  `json:"session_id"`
	Model     *string `json:"model"`
}

// Rematch asks the server to recompute requirement-to-catalog matches for
// an existing session. Safe to call repeatedly; whether state changes is
// the server's decision. The result is opaque to the client.
func (c *Client) Rematch(ctx context.Context, source FileHandle, sessionID, model string) (json.RawMessage, error) {
	req := rematchRequest{
		FileID:    source.FileID,
		FileName:  source.FileName,
		SessionID: sessionID,
		Model:     c.model(model),
	}

	var result json.RawMessage
	if err := c.tp.PostJSON(ctx, c.endpoint(pathRematch), req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

type reviewRequest struct {
	Requirements []any  `json:"requirements"`
	SessionID    string `json:"session_id"`
}

// Review submits a requirement collection for automated review. Inputs may
// be well-formed records, raw strings, or partial objects; normalization
// guarantees nothing is dropped (see NormalizeRequirements). An empty
// collection still posts, so the session reaches the server for
// bookkeeping.
func (c *Client) Review(ctx context.Context, requirements []any, sessionID string) (*ReviewResult, error) {
	if sessionID == "" && c.cfg.FallbackSessionID != "" {
		sessionID = c.cfg.FallbackSessionID
	}

	req := reviewRequest{
		Requirements: NormalizeRequirements(requirements),
		SessionID:    sessionID,
	}

	var result ReviewResult
	if err := c.tp.PostJSON(ctx, c.endpoint(pathReview), req, &result); err != nil {
		return nil, err
	}

	c.logger.Info("review submitted", "count", len(req.Requirements), "session_id", sessionID)
	return &result, nil
}

type generateRequest struct {
	SessionID string    `json:"session_id"`
	ExcelType ExcelType `json:"excel_type,omitempty"`
}

type generateResponse struct {
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

// GenerateArtifact requests generation of a result document for a session.
// The target endpoint follows the variant's RouteStrategy. When the server
// omits a download URL, one is synthesized for requirement and test-case
// artifacts; review-type artifacts keep an empty URL in that case rather
// than guessing.
//
// A missing session identifier fails with ErrMissingSession before any
// network call. Transport failures are re-raised as *GenerationError with a
// caller-facing message.
func (c *Client) GenerateArtifact(ctx context.Context, sessionID string, t ExcelType) (*Artifact, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	url := c.endpoint(c.cfg.Route.generationPath(t))
	c.logger.Info("generating artifact", "session_id", sessionID, "excel_type", t, "url", url)

	var resp generateResponse
	if err := c.tp.PostJSON(ctx, url, generateRequest{SessionID: sessionID, ExcelType: t}, &resp); err != nil {
		return nil, wrapGeneration(err)
	}

	artifact := &Artifact{
		SessionID:   sessionID,
		Type:        t,
		DownloadURL: resp.DownloadURL,
		Message:     resp.Message,
	}
	if artifact.DownloadURL == "" && (t == ExcelRequirement || t == ExcelTestCase) {
		artifact.DownloadURL = c.DownloadURL(sessionID, t)
	}
	return artifact, nil
}

// GenerateReviewDocument requests generation of the review report for a
// session and returns the document reference for ReviewDownloadURL.
func (c *Client) GenerateReviewDocument(ctx context.Context, sessionID string) (*ReviewDocument, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	var doc ReviewDocument
	if err := c.tp.PostJSON(ctx, c.endpoint(pathGenerateReview), generateRequest{SessionID: sessionID}, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// model resolves an explicit model name against the variant default.
// Returns nil when neither is set, serializing as null.
func (c *Client) model(explicit string) *string {
	if explicit != "" {
		return &explicit
	}
	if c.cfg.DefaultModel != "" {
		m := c.cfg.DefaultModel
		return &m
	}
	return nil
}
