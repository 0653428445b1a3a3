package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_BasicConversion(t *testing.T) {
	html := `<html><head><title>Test Page</title></head><body>
		<h1>Heading</h1>
		<p>Some <strong>bold</strong> prose.</p>
	</body></html>`

	result, err := NewConverter().Convert([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "Test Page", result.Title)
	assert.Contains(t, result.Markdown, "# Heading")
	assert.Contains(t, result.Markdown, "**bold**")
}

func TestConverter_StripsChrome(t *testing.T) {
	html := `<html><body>
		<nav><a href="/">Home</a></nav>
		<header>Site header</header>
		<p>Actual content.</p>
		<script>var x = 1;</script>
		<footer>Copyright</footer>
	</body></html>`

	result, err := NewConverter().Convert([]byte(html))
	require.NoError(t, err)
	assert.Contains(t, result.Markdown, "Actual content.")
	assert.NotContains(t, result.Markdown, "Site header")
	assert.NotContains(t, result.Markdown, "var x = 1")
	assert.NotContains(t, result.Markdown, "Copyright")
}

func TestConverter_NoTitle(t *testing.T) {
	result, err := NewConverter().Convert([]byte("<html><body><p>text</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, result.Title)
	assert.Contains(t, result.Markdown, "text")
}

func TestCleanMarkdown_CollapsesBlankRuns(t *testing.T) {
	in := "a\n\n\n\n\n\nb   \nc\t\n"
	out := cleanMarkdown(in)
	assert.Equal(t, "a\n\n\nb\nc", out)
}
