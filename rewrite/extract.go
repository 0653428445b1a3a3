package rewrite

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// DefaultSnippetLimit is how much page text the scan phase samples, in
	// characters.
	DefaultSnippetLimit = 3000

	// MaxWordsPerCategory is the cap the prompt asks the model to respect.
	// Responses exceeding it are not truncated; the model's fidelity is not
	// verified here.
	MaxWordsPerCategory = 3
)

// extractionPromptTemplate is the fixed instruction issued as the sole prompt
// of a plain language-model session.
const extractionPromptTemplate = `Analyze the following text and extract the most salient words.
Respond with exactly one JSON object of this shape and nothing else:
{"nouns": [], "verbs": [], "adjectives": []}
Each array holds at most %d distinct words taken from the text.

Text:
%s`

// ExtractionPrompt builds the fixed-template extraction prompt for a page
// snippet.
func ExtractionPrompt(snippet string) string {
	return fmt.Sprintf(extractionPromptTemplate, MaxWordsPerCategory, snippet)
}

// PromptSession is the slice of a language-model session the scan phase uses.
type PromptSession interface {
	Prompt(ctx context.Context, text string) (string, error)
	Destroy() error
}

// PromptFactory creates a plain language-model session (no special
// arguments).
type PromptFactory func(ctx context.Context) (PromptSession, error)

// Scan runs the extraction phase: create a session, issue the fixed prompt
// over the snippet, destroy the session, parse the response. The session is
// destroyed once a response is obtained even when parsing fails afterwards.
func Scan(ctx context.Context, factory PromptFactory, snippet string, logger *slog.Logger) (*WordCategories, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sess, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if derr := sess.Destroy(); derr != nil {
			logger.Warn("Failed to destroy prompt session", "error", derr)
		}
	}()

	raw, err := sess.Prompt(ctx, ExtractionPrompt(snippet))
	if err != nil {
		return nil, fmt.Errorf("prompt model: %w", err)
	}

	words, err := ParseWordCategories(raw)
	if err != nil {
		logger.Warn("Model returned unparsable extraction", "error", err)
		return nil, err
	}

	logger.Debug("Extraction complete",
		"nouns", len(words.Nouns),
		"verbs", len(words.Verbs),
		"adjectives", len(words.Adjectives))
	return words, nil
}
