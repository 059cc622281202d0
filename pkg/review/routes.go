package review

import "strings"

// Endpoint names shared by both variants.
const (
	pathUpload         = "upload"
	pathCandidates     = "requirement_candidates"
	pathExtract        = "extract"
	pathAIExtract      = "ai_extract"
	pathAICatalog      = "ai_catalog"
	pathRematch        = "rematch_requirements"
	pathReview         = "review_requirements"
	pathGenerateReview = "generate_review_document"
	pathGenerateExcel  = "generate_excel"
	pathDownload       = "download"
	pathDownloadReview = "download_review"
)

// RouteStrategy selects the generation endpoint for a given artifact type.
// The two variants diverged here in production and both behaviors are kept:
// the configuration-item backend's generic export endpoint proved
// unreliable, so that variant routes every generation request through the
// review-document endpoint.
type RouteStrategy int

const (
	// RouteReviewDocument always targets the review-document endpoint,
	// forwarding the artifact type for server-side branching.
	RouteReviewDocument RouteStrategy = iota
	// RouteByType targets the review-document endpoint for review-type or
	// unspecified artifacts and the generic export endpoint otherwise.
	RouteByType
)

// generationPath resolves the endpoint for the given artifact type.
func (s RouteStrategy) generationPath(t ExcelType) string {
	if s == RouteByType && t != "" && t != ExcelReview {
		return pathGenerateExcel
	}
	return pathGenerateReview
}

// joinURL appends path segments to base with exactly one slash between each.
func joinURL(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, strings.TrimRight(base, "/"))
	for _, s := range segments {
		parts = append(parts, strings.Trim(s, "/"))
	}
	return strings.Join(parts, "/")
}

// DownloadURL builds the download URL for a session/artifact-type pair.
// Pure string construction: an unknown session yields a well-formed URL the
// server will reject at fetch time.
func (c *Client) DownloadURL(sessionID string, t ExcelType) string {
	return joinURL(c.cfg.BaseURL, pathDownload, sessionID, string(t))
}

// ReviewDownloadURL builds the download URL for a generated review document.
func (c *Client) ReviewDownloadURL(docID string) string {
	return joinURL(c.cfg.BaseURL, pathDownloadReview, docID)
}

func (c *Client) endpoint(path string) string {
	return joinURL(c.cfg.BaseURL, path)
}
