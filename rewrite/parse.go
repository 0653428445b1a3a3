package rewrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled fence patterns. Models habitually wrap JSON in a markdown code
// fence with an optional language tag.
var (
	leadingFencePattern  = regexp.MustCompile("^\\s*```[a-zA-Z0-9_-]*[ \t]*\n?")
	trailingFencePattern = regexp.MustCompile("\n?[ \t]*```\\s*$")
)

// ExtractionError marks a malformed or unparsable model response. The scan
// phase fails with it and resets; the caller may offer a manual re-scan.
// There is no retry inside the pipeline.
type ExtractionError struct {
	err error
}

func (e *ExtractionError) Error() string {
	return "extract words: " + e.err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.err
}

// NewExtractionError wraps an error as an extraction failure.
func NewExtractionError(err error) error {
	return &ExtractionError{err: err}
}

// IsExtractionError reports whether err is an extraction failure.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

// StripCodeFence removes a leading triple-backtick fence (with optional
// language token) and a trailing fence. Unfenced input passes through
// unchanged.
func StripCodeFence(s string) string {
	s = leadingFencePattern.ReplaceAllString(s, "")
	s = trailingFencePattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseWordCategories parses the model's raw response into word categories.
// The response may be fence-wrapped; anything that then fails structured
// parsing is an ExtractionError.
func ParseWordCategories(raw string) (*WordCategories, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, NewExtractionError(errors.New("empty response"))
	}

	var words WordCategories
	if err := json.Unmarshal([]byte(cleaned), &words); err != nil {
		return nil, NewExtractionError(fmt.Errorf("parse response: %w", err))
	}
	return &words, nil
}
