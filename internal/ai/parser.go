package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"quest-forge/internal/model"
)

// The model occasionally wraps its JSON answer in fenced-code markers even
// though the prompt forbids surrounding text. Both the opening marker (with
// optional language tag) and the closing marker are stripped wherever they
// appear before decoding.
var (
	openingFenceRe = regexp.MustCompile("```json\\s*")
	closingFenceRe = regexp.MustCompile("```\\s*")
)

// StripFences removes fenced-code markers and surrounding whitespace.
func StripFences(raw string) string {
	cleaned := openingFenceRe.ReplaceAllString(raw, "")
	cleaned = closingFenceRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ParseQuest decodes a model response into a Quest. A failure is a
// representable result carrying the decode error, never a panic. No schema
// validation happens here: the schema is advisory, enforced only by the
// prompt, and callers must treat every field as possibly absent.
func ParseQuest(raw string) (*model.Quest, error) {
	var q model.Quest
	if err := json.Unmarshal([]byte(StripFences(raw)), &q); err != nil {
		return nil, fmt.Errorf("JSON parse error: %s", err.Error())
	}
	return &q, nil
}

// CoherenceVerdict is the wire shape of the verification pass's answer.
type CoherenceVerdict struct {
	Score     *int     `json:"score"`
	Verdict   string   `json:"verdict"`
	Issues    []string `json:"issues"`
	Strengths []string `json:"strengths"`
}

// ParseCoherence decodes a coherence verdict, with the same tolerance rules
// as ParseQuest.
func ParseCoherence(raw string) (*CoherenceVerdict, error) {
	var v CoherenceVerdict
	if err := json.Unmarshal([]byte(StripFences(raw)), &v); err != nil {
		return nil, fmt.Errorf("JSON parse error: %s", err.Error())
	}
	return &v, nil
}
