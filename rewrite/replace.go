package rewrite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// matcher pairs a compiled pattern with its replacement text.
type matcher struct {
	pattern     *regexp.Regexp
	replacement string
}

// compileMatchers builds one case-insensitive matcher per mapping entry. The
// original word is escaped so it always matches as a literal. Matching is
// substring-based, not word-boundary-based: a short original can match inside
// unrelated longer words. That is a deliberate trade-off carried over from
// the product behavior, not an oversight.
func compileMatchers(m ReplacementMap) ([]matcher, error) {
	words := make([]string, 0, len(m))
	for word := range m {
		words = append(words, word)
	}
	// Deterministic application order.
	sort.Strings(words)

	matchers := make([]matcher, 0, len(words))
	for _, word := range words {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(word))
		if err != nil {
			return nil, fmt.Errorf("compile matcher for %q: %w", word, err)
		}
		matchers = append(matchers, matcher{pattern: re, replacement: m[word]})
	}
	return matchers, nil
}

// replaceText applies every matcher to one text value. The replacement keeps
// the caller-provided casing, not the original's.
func replaceText(text string, matchers []matcher) (string, bool) {
	changed := false
	for _, m := range matchers {
		if !m.pattern.MatchString(text) {
			continue
		}
		text = m.pattern.ReplaceAllString(text, m.replacement)
		changed = true
	}
	return text, changed
}

// ReplaceInHTML rewrites the document's text nodes in document order,
// leaving attributes and markup untouched. Script and style contents are
// skipped: they are text nodes but not visible page text. Returns the
// rewritten document and how many text nodes changed.
func ReplaceInHTML(doc string, m ReplacementMap) (string, int, error) {
	if len(m) == 0 {
		return doc, 0, nil
	}

	matchers, err := compileMatchers(m)
	if err != nil {
		return "", 0, err
	}

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", 0, fmt.Errorf("parse document: %w", err)
	}

	rewritten := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if replaced, changed := replaceText(n.Data, matchers); changed {
				n.Data = replaced
				rewritten++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return "", 0, fmt.Errorf("render document: %w", err)
	}
	return sb.String(), rewritten, nil
}
