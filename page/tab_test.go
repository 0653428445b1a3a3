package page

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"under limit", "short", 10, "short"},
		{"exact limit", "exact", 5, "exact"},
		{"over limit", "overflowing", 4, "over"},
		{"zero limit keeps all", "text", 0, "text"},
		{"negative limit keeps all", "text", -1, "text"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateRunes(tt.text, tt.limit))
		})
	}
}

func TestTruncateRunes_CountsCharactersNotBytes(t *testing.T) {
	// Each of these runes is multiple bytes; the limit counts characters.
	text := "héllo wörld"
	got := truncateRunes(text, 5)
	assert.Equal(t, "héllo", got)
}

func TestTruncateRunes_NeverSplitsARune(t *testing.T) {
	text := strings.Repeat("日本語", 100)
	for limit := 1; limit < 12; limit++ {
		got := truncateRunes(text, limit)
		assert.True(t, utf8.ValidString(got), "limit %d produced invalid UTF-8", limit)
		assert.Equal(t, limit, utf8.RuneCountInString(got))
	}
}
