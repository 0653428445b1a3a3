// Package summarize reduces oversized text to a single summary by chunking on
// sentence boundaries, summarizing each chunk, and recursively re-summarizing
// the joined results until they fit a single pass.
package summarize

import "regexp"

// DefaultChunkSize is the largest text a single summarization call accepts,
// in characters.
const DefaultChunkSize = 4000

// sentencePattern matches a run of characters terminated by sentence-ending
// punctuation or a newline. Terminator runs stay attached to their sentence,
// so concatenating the matches reconstructs the input.
var sentencePattern = regexp.MustCompile(`[^.!?\n]*[.!?\n]+`)

// SplitSentences splits text into sentence-like units. Terminators are kept
// with the preceding sentence and any unterminated tail is returned as the
// final unit. When no terminator occurs anywhere, the whole text is a single
// degenerate unit.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	locs := sentencePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		sentences = append(sentences, text[loc[0]:loc[1]])
		end = loc[1]
	}
	if end < len(text) {
		sentences = append(sentences, text[end:])
	}
	return sentences
}

// PackChunks greedily packs sentences into chunks of at most chunkSize
// characters. Single-pass: when appending the next sentence would overflow
// the running chunk, the chunk is closed and the sentence starts a new one.
// A sentence longer than chunkSize becomes its own oversized chunk rather
// than being split mid-sentence. The final partial chunk is flushed.
func PackChunks(sentences []string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	var current string
	for _, sentence := range sentences {
		if current != "" && len(current)+len(sentence) > chunkSize {
			chunks = append(chunks, current)
			current = ""
		}
		current += sentence
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
