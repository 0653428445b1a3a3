package page

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	readability "github.com/go-shiori/go-readability"

	"github.com/probelab/panelprobe/rewrite"
)

// Tab wraps a single browser page.
type Tab struct {
	page   *rod.Page
	logger *slog.Logger
}

func newTab(p *rod.Page, logger *slog.Logger) *Tab {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tab{page: p, logger: logger}
}

// Page exposes the underlying rod page for the host binding.
func (t *Tab) Page() *rod.Page {
	return t.page
}

// URL returns the page's current URL.
func (t *Tab) URL() (string, error) {
	info, err := t.page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// Title returns the page's document title.
func (t *Tab) Title() (string, error) {
	info, err := t.page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

// HTML returns the page's full serialized document.
func (t *Tab) HTML() (string, error) {
	html, err := t.page.HTML()
	if err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}
	return html, nil
}

// VisibleText extracts the readable text content of the page, dropping
// navigation, boilerplate, scripts and styles.
func (t *Tab) VisibleText() (string, error) {
	html, err := t.HTML()
	if err != nil {
		return "", err
	}

	pageURL, err := t.URL()
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return "", fmt.Errorf("extract readable text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// Markdown converts the page's readable content to markdown. Summarizer
// sessions are told the input is markdown, so the input should be.
func (t *Tab) Markdown(converter *Converter) (string, error) {
	html, err := t.HTML()
	if err != nil {
		return "", err
	}
	result, err := converter.Convert([]byte(html))
	if err != nil {
		return "", fmt.Errorf("convert page to markdown: %w", err)
	}
	return result.Markdown, nil
}

// Snippet returns at most limit characters of the page's visible text.
func (t *Tab) Snippet(limit int) (string, error) {
	text, err := t.VisibleText()
	if err != nil {
		return "", err
	}
	return truncateRunes(text, limit), nil
}

// truncateRunes caps text at limit characters, never splitting a multi-byte
// rune. Page text is fed into model prompts and must stay valid UTF-8.
func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}

// InjectReplacements runs the word substitution script inside the page.
// Only text nodes change; markup, attributes, scripts and styles are left
// alone.
func (t *Tab) InjectReplacements(ctx context.Context, m rewrite.ReplacementMap) error {
	if len(m) == 0 {
		return nil
	}

	pageURL, _ := t.URL()
	_, err := t.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           rewrite.InjectionScript(),
		JSArgs:       []interface{}{map[string]string(m)},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return NewInjectionError(pageURL, "replacement script failed", err)
	}

	t.logger.Debug("Injected replacements",
		slog.String("url", pageURL),
		slog.Int("words", len(m)))
	return nil
}
