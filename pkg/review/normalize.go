package review

import "encoding/json"

// Sentinel field values substituted when a raw string cannot supply a name
// or chapter. Malformed entries degrade to sentinel-filled records; nothing
// is dropped.
const (
	UnnamedRequirement = "unnamed requirement"
	UnknownChapter     = "unknown chapter"
)

type inputKind int

const (
	kindRecord  inputKind = iota // structurally complete record
	kindString                   // raw string, parsed during normalization
	kindPartial                  // anything else, passed through unchanged
)

// RequirementInput is one element of the heterogeneous collection accepted
// by Review: a well-formed record, a raw string, or a partial object.
// Classification is explicit and happens once, at the boundary.
type RequirementInput struct {
	kind    inputKind
	record  RequirementRecord
	raw     string
	partial any
}

// ClassifyRequirement resolves an arbitrary input element into one of the
// three union arms. Records and maps carrying all three fields classify as
// complete; strings defer parsing to normalization; everything else is a
// partial object.
func ClassifyRequirement(v any) RequirementInput {
	switch t := v.(type) {
	case RequirementRecord:
		if t.complete() {
			return RequirementInput{kind: kindRecord, record: t}
		}
		return RequirementInput{kind: kindPartial, partial: t}
	case *RequirementRecord:
		return ClassifyRequirement(*t)
	case string:
		return RequirementInput{kind: kindString, raw: t}
	case map[string]any:
		if rec, ok := recordFromMap(t); ok {
			return RequirementInput{kind: kindRecord, record: rec}
		}
		return RequirementInput{kind: kindPartial, partial: t}
	default:
		return RequirementInput{kind: kindPartial, partial: v}
	}
}

// NormalizeRequirements resolves every element of a heterogeneous
// requirement collection into its wire form. Complete records pass through
// unchanged; strings are parsed as JSON objects and fall back to
// sentinel-filled records; partial objects pass through as-is with no field
// inference. An empty input yields an empty (non-nil) collection.
func NormalizeRequirements(reqs []any) []any {
	normalized := make([]any, 0, len(reqs))
	for _, r := range reqs {
		normalized = append(normalized, ClassifyRequirement(r).normalize())
	}
	return normalized
}

func (in RequirementInput) normalize() any {
	switch in.kind {
	case kindRecord:
		return in.record
	case kindString:
		return normalizeString(in.raw)
	default:
		return in.partial
	}
}

// normalizeString attempts to parse a raw string as a structured record.
// A string that decodes to a JSON object passes through as that object; a
// parse failure (including non-object JSON) wraps the original string as
// sentinel-filled content.
func normalizeString(s string) any {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return RequirementRecord{
			Name:    UnnamedRequirement,
			Chapter: UnknownChapter,
			Content: s,
		}
	}
	if rec, ok := recordFromMap(fields); ok {
		return rec
	}
	return fields
}

func recordFromMap(fields map[string]any) (RequirementRecord, bool) {
	name, _ := fields["name"].(string)
	chapter, _ := fields["chapter"].(string)
	content, _ := fields["content"].(string)

	rec := RequirementRecord{Name: name, Chapter: chapter, Content: content}
	if !rec.complete() || len(fields) > 3 {
		return RequirementRecord{}, false
	}
	return rec, true
}
