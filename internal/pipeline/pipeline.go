// Package pipeline drives one complete document-review run against a
// workflow variant: upload, candidate fetch, detail extraction, automated
// review, artifact generation, and download. Stage ordering is enforced
// here; the review client itself never chains stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"reviewflow/pkg/review"
	"reviewflow/pkg/transport"
)

// Options selects the documents and extraction strategy for a run.
type Options struct {
	// SourcePath is the document under review. Required.
	SourcePath string
	// CatalogPath is the requirement catalog document. When empty, the
	// catalog is derived from the source via AI catalog extraction and
	// detail extraction uses the AI path regardless of UseAI.
	CatalogPath string
	// Names restricts extraction to the given candidate names; empty means
	// every fetched candidate.
	Names []string
	// UseAI selects AI-assisted detail extraction.
	UseAI bool
	// Model overrides the variant's default model for AI calls.
	Model string
	// CatalogLevel sets the AI catalog depth; zero means the default.
	CatalogLevel int
	// ExcelType selects the artifact to generate.
	ExcelType review.ExcelType
	// OutputDir receives the downloaded artifact. Empty skips the download.
	OutputDir string
}

// Result summarizes a completed run.
type Result struct {
	Source     review.FileHandle
	Catalog    review.FileHandle
	SessionID  string
	Candidates []review.Candidate
	Extracted  []review.RequirementRecord
	Review     *review.ReviewResult
	Artifact   *review.Artifact
	OutputPath string
}

// Runner executes runs against one workflow variant.
type Runner struct {
	client *review.Client
	tp     *transport.Client
	logger *slog.Logger
}

// New creates a Runner for the given variant client.
func New(client *review.Client, tp *transport.Client, logger *slog.Logger) *Runner {
	return &Runner{
		client: client,
		tp:     tp,
		logger: logger.With("system", "pipeline"),
	}
}

// Run executes the full stage sequence and returns the accumulated result.
// The first failing stage aborts the run; errors surface unchanged.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.SourcePath == "" {
		return nil, fmt.Errorf("source document required")
	}

	result := &Result{}
	if err := r.uploadDocuments(ctx, opts, result); err != nil {
		return nil, err
	}

	set, err := r.fetchCandidates(ctx, opts, result)
	if err != nil {
		return nil, err
	}
	result.Candidates = set.Candidates
	result.SessionID = set.SessionID

	names := opts.Names
	if len(names) == 0 {
		for _, c := range set.Candidates {
			names = append(names, c.Name)
		}
	}

	extracted, err := r.extract(ctx, opts, result, names)
	if err != nil {
		return nil, err
	}
	result.Extracted = extracted.Requirements
	if extracted.SessionID != "" {
		result.SessionID = extracted.SessionID
	}

	requirements := make([]any, len(result.Extracted))
	for i, rec := range result.Extracted {
		requirements[i] = rec
	}

	reviewed, err := r.client.Review(ctx, requirements, result.SessionID)
	if err != nil {
		return nil, err
	}
	result.Review = reviewed
	if reviewed.SessionID != "" {
		result.SessionID = reviewed.SessionID
	}

	artifact, err := r.client.GenerateArtifact(ctx, result.SessionID, opts.ExcelType)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact

	if artifact.DownloadURL == "" && opts.ExcelType == review.ExcelReview {
		doc, err := r.client.GenerateReviewDocument(ctx, result.SessionID)
		if err != nil {
			return nil, err
		}
		artifact.DownloadURL = r.client.ReviewDownloadURL(doc.DocID)
	}

	if opts.OutputDir != "" && artifact.DownloadURL != "" {
		path, err := r.download(ctx, artifact, opts.OutputDir)
		if err != nil {
			return nil, err
		}
		result.OutputPath = path
	}

	r.logger.Info("run complete",
		"session_id", result.SessionID,
		"candidates", len(result.Candidates),
		"extracted", len(result.Extracted),
		"output", result.OutputPath,
	)
	return result, nil
}

// uploadDocuments uploads the source and, when present, the catalog. The
// two uploads are independent and pre-session, so they run concurrently.
func (r *Runner) uploadDocuments(ctx context.Context, opts Options, result *Result) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		handle, err := r.uploadFile(ctx, opts.SourcePath)
		if err != nil {
			return fmt.Errorf("upload source: %w", err)
		}
		result.Source = *handle
		return nil
	})

	if opts.CatalogPath != "" {
		g.Go(func() error {
			handle, err := r.uploadFile(ctx, opts.CatalogPath)
			if err != nil {
				return fmt.Errorf("upload catalog: %w", err)
			}
			result.Catalog = *handle
			return nil
		})
	}

	return g.Wait()
}

func (r *Runner) uploadFile(ctx context.Context, path string) (*review.FileHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return r.client.Upload(ctx, filepath.Base(path), f)
}

func (r *Runner) fetchCandidates(ctx context.Context, opts Options, result *Result) (*review.CandidateSet, error) {
	if opts.CatalogPath == "" {
		return r.client.ExtractCatalog(ctx, result.Source, opts.CatalogLevel, opts.Model)
	}
	return r.client.FetchCandidates(ctx, result.Source, result.Catalog)
}

func (r *Runner) extract(ctx context.Context, opts Options, result *Result, names []string) (*review.ExtractResult, error) {
	if opts.UseAI || opts.CatalogPath == "" {
		return r.client.AIExtract(ctx, result.Source, names, opts.Model)
	}
	return r.client.Extract(ctx, result.Source, names, result.Catalog)
}

// download fetches the artifact binary and writes it under dir; the file
// name derives from the artifact identity.
func (r *Runner) download(ctx context.Context, artifact *review.Artifact, dir string) (string, error) {
	target, err := r.resolveURL(artifact.DownloadURL)
	if err != nil {
		return "", err
	}

	body, err := r.tp.Get(ctx, target)
	if err != nil {
		return "", err
	}
	defer body.Close()

	name := artifact.SessionID
	if artifact.Type != "" {
		name += "_" + string(artifact.Type)
	}
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// resolveURL makes a server-supplied download URL absolute. The backend
// returns path-only URLs; they resolve against the variant's base.
func (r *Runner) resolveURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	if u.IsAbs() {
		return raw, nil
	}

	base, err := url.Parse(r.client.BaseURL())
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}
