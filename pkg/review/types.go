// Package review implements the client core for the document-review
// workflow: upload, candidate fetch, detail extraction, rematch, review,
// artifact generation, and download URL construction. Two variants of the
// workflow share this implementation and differ only by configuration
// (base path, endpoint routing strategy, default model).
package review

import "encoding/json"

// ExcelType identifies a generated artifact kind.
type ExcelType string

// Artifact kinds understood by the backend.
const (
	ExcelRequirement ExcelType = "requirement"
	ExcelTestCase    ExcelType = "test_case"
	ExcelReview      ExcelType = "review"
)

// FileHandle references an uploaded document. Both identifiers are taken
// verbatim from the upload response; the client never mints or alters them.
type FileHandle struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// Candidate is a server-identified possible requirement item awaiting
// selection. The client passes candidates through by name and does not
// interpret them further.
type Candidate struct {
	Name    string `json:"name"`
	Chapter string `json:"chapter,omitempty"`
}

// CandidateSet is the candidate-fetch result. The backend mints the session
// at candidate extraction time, so the session identifier rides along with
// the candidate list.
type CandidateSet struct {
	Candidates []Candidate `json:"candidates"`
	SessionID  string      `json:"session_id"`
}

// RequirementRecord is a fully extracted requirement. After normalization
// every record entering review has all three fields populated.
type RequirementRecord struct {
	Name    string `json:"name"`
	Chapter string `json:"chapter"`
	Content string `json:"content"`
}

// complete reports whether all three fields are populated.
func (r RequirementRecord) complete() bool {
	return r.Name != "" && r.Chapter != "" && r.Content != ""
}

// ExtractResult carries extracted requirement details plus the session the
// backend associated with the extraction.
type ExtractResult struct {
	Message      string              `json:"message"`
	SessionID    string              `json:"session_id"`
	Requirements []RequirementRecord `json:"requirements"`
}

// ReviewResult is the outcome of an automated requirement review. Results
// are opaque to the client and handed to the caller unmodified.
type ReviewResult struct {
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	Results   json.RawMessage `json:"review_results"`
}

// Artifact is a generated downloadable result document for a session.
// DownloadURL is either server-supplied or synthesized from the session and
// type; for review-type artifacts without a server URL it stays empty.
type Artifact struct {
	SessionID   string    `json:"session_id"`
	Type        ExcelType `json:"excel_type,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// ReviewDocument references a generated review report by document id,
// downloadable via ReviewDownloadURL.
type ReviewDocument struct {
	Success bool   `json:"success"`
	DocID   string `json:"file_id"`
	Message string `json:"message"`
}
