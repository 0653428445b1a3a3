package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceInHTML_CaseInsensitive(t *testing.T) {
	doc := "<html><body><p>The Cat sat.</p></body></html>"
	out, n, err := ReplaceInHTML(doc, ReplacementMap{"cat": "dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// Replacement keeps the caller-provided casing, not the original's.
	assert.Contains(t, out, "The dog sat.")
}

func TestReplaceInHTML_SubstringMatching(t *testing.T) {
	// Substring matching is intentional: short originals match inside longer
	// words.
	doc := "<html><body><p>concatenate</p></body></html>"
	out, n, err := ReplaceInHTML(doc, ReplacementMap{"cat": "dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out, "condogenate")
}

func TestReplaceInHTML_AllOccurrences(t *testing.T) {
	doc := "<html><body><p>cat CAT Cat</p></body></html>"
	out, _, err := ReplaceInHTML(doc, ReplacementMap{"cat": "dog"})
	require.NoError(t, err)
	assert.Contains(t, out, "dog dog dog")
}

func TestReplaceInHTML_AttributesAndMarkupUntouched(t *testing.T) {
	doc := `<html><body><a href="cat.html" title="cat page">a cat</a></body></html>`
	out, n, err := ReplaceInHTML(doc, ReplacementMap{"cat": "dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out, `href="cat.html"`)
	assert.Contains(t, out, `title="cat page"`)
	assert.Contains(t, out, "a dog")
}

func TestReplaceInHTML_SkipsScriptAndStyle(t *testing.T) {
	doc := `<html><head><style>.cat{color:red}</style></head><body><script>var cat=1;</script><p>cat</p></body></html>`
	out, n, err := ReplaceInHTML(doc, ReplacementMap{"cat": "dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out, ".cat{color:red}")
	assert.Contains(t, out, "var cat=1;")
	assert.Contains(t, out, "<p>dog</p>")
}

func TestReplaceInHTML_RegexMetacharactersAreLiteral(t *testing.T) {
	doc := "<html><body><p>price (usd) is 5</p></body></html>"
	out, n, err := ReplaceInHTML(doc, ReplacementMap{"(usd)": "(eur)"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, out, "price (eur) is 5")
}

func TestReplaceInHTML_UnmatchedNodesUntouched(t *testing.T) {
	doc := "<html><body><p>nothing here</p><p>a cat</p></body></html>"
	_, n, err := ReplaceInHTML(doc, ReplacementMap{"cat": "dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the matching node counts as rewritten")
}

func TestReplaceInHTML_EmptyMap(t *testing.T) {
	doc := "<html><body><p>a cat</p></body></html>"
	out, n, err := ReplaceInHTML(doc, ReplacementMap{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, doc, out)
}

func TestInjectionScript_EscapesAndMatchesLikeGoPath(t *testing.T) {
	// The script is evaluated in the page, so here we only pin down its
	// load-bearing fragments.
	js := InjectionScript()
	assert.True(t, strings.HasPrefix(js, "(replacements) =>"))
	assert.Contains(t, js, "'gi'")
	assert.Contains(t, js, "createTreeWalker")
	assert.Contains(t, js, "SHOW_TEXT")
}

// fakePromptSession scripts a prompt reply for Scan tests.
type fakePromptSession struct {
	reply        string
	err          error
	destroyCalls int
}

func (s *fakePromptSession) Prompt(context.Context, string) (string, error) {
	return s.reply, s.err
}

func (s *fakePromptSession) Destroy() error {
	s.destroyCalls++
	return nil
}

func TestScan_Success(t *testing.T) {
	sess := &fakePromptSession{reply: "```json\n{\"nouns\":[\"cat\"],\"verbs\":[\"sit\"],\"adjectives\":[]}\n```"}
	factory := func(context.Context) (PromptSession, error) { return sess, nil }

	words, err := Scan(context.Background(), factory, "The cat sat.", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, words.Nouns)
	assert.Equal(t, 1, sess.destroyCalls)
}

func TestScan_DestroysSessionWhenParsingFails(t *testing.T) {
	sess := &fakePromptSession{reply: "I cannot help with that."}
	factory := func(context.Context) (PromptSession, error) { return sess, nil }

	_, err := Scan(context.Background(), factory, "text", nil)
	require.Error(t, err)
	assert.True(t, IsExtractionError(err))
	assert.Equal(t, 1, sess.destroyCalls, "session must be destroyed even when parsing fails")
}

func TestScan_DestroysSessionWhenPromptFails(t *testing.T) {
	sess := &fakePromptSession{err: errors.New("model crashed")}
	factory := func(context.Context) (PromptSession, error) { return sess, nil }

	_, err := Scan(context.Background(), factory, "text", nil)
	require.Error(t, err)
	assert.False(t, IsExtractionError(err), "a model failure is not an extraction error")
	assert.Equal(t, 1, sess.destroyCalls)
}

func TestScan_FactoryErrorPropagates(t *testing.T) {
	factory := func(context.Context) (PromptSession, error) { return nil, errors.New("no model") }
	_, err := Scan(context.Background(), factory, "text", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model")
}

func TestExtractionPrompt_ContainsSnippetAndShape(t *testing.T) {
	p := ExtractionPrompt("sample page text")
	assert.Contains(t, p, "sample page text")
	assert.Contains(t, p, `"nouns"`)
	assert.Contains(t, p, `"verbs"`)
	assert.Contains(t, p, `"adjectives"`)
	assert.Contains(t, p, "at most 3")
}