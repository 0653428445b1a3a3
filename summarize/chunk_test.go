package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences_KeepsTerminators(t *testing.T) {
	got := SplitSentences("One. Two! Three?")
	assert.Equal(t, []string{"One.", " Two!", " Three?"}, got)
}

func TestSplitSentences_TerminatorRuns(t *testing.T) {
	// A run of terminators stays attached to its sentence.
	got := SplitSentences("Wait... what?!\nNext line")
	assert.Equal(t, []string{"Wait...", " what?!\n", "Next line"}, got)
}

func TestSplitSentences_NewlineIsTerminator(t *testing.T) {
	got := SplitSentences("line one\nline two\n")
	assert.Equal(t, []string{"line one\n", "line two\n"}, got)
}

func TestSplitSentences_NoDelimiter(t *testing.T) {
	// No terminator anywhere: the whole text is one degenerate unit.
	got := SplitSentences("no terminator here")
	assert.Equal(t, []string{"no terminator here"}, got)
}

func TestSplitSentences_Empty(t *testing.T) {
	assert.Nil(t, SplitSentences(""))
}

func TestSplitSentences_Reconstruction(t *testing.T) {
	texts := []string{
		"One. Two! Three? Four",
		"Wait... what?!\nNext line without end",
		strings.Repeat("A sentence that goes on. ", 500),
		"no terminator at all",
	}
	for _, text := range texts {
		parts := SplitSentences(text)
		assert.Equal(t, text, strings.Join(parts, ""))
	}
}

func TestPackChunks_Greedy(t *testing.T) {
	sentences := []string{"aaaa.", "bbbb.", "cccc.", "dddd."}
	chunks := PackChunks(sentences, 10)
	// Two sentences of 5 chars fit per 10-char chunk.
	assert.Equal(t, []string{"aaaa.bbbb.", "cccc.dddd."}, chunks)
}

func TestPackChunks_OversizedSentenceBecomesOwnChunk(t *testing.T) {
	long := strings.Repeat("x", 50) + "."
	chunks := PackChunks([]string{"short.", long, "tail."}, 20)
	require.Len(t, chunks, 3)
	assert.Equal(t, "short.", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "tail.", chunks[2])
}

func TestPackChunks_FlushesFinalPartial(t *testing.T) {
	chunks := PackChunks([]string{"one.", "two."}, 100)
	assert.Equal(t, []string{"one.two."}, chunks)
}

func TestPackChunks_NeverSplitsSentences(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300)
	sentences := SplitSentences(text)
	chunks := PackChunks(sentences, DefaultChunkSize)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		// Every chunk ends exactly where a sentence ends.
		assert.True(t, strings.HasSuffix(chunk, ". ") || strings.HasSuffix(chunk, "."),
			"chunk boundary inside a sentence: %q", chunk[len(chunk)-10:])
	}
	// Concatenating all chunks reconstructs the input exactly.
	assert.Equal(t, text, strings.Join(chunks, ""))
}
