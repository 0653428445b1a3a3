// Package rewrite extracts salient words from page text through a language
// model and substitutes user-supplied replacements into the page's text
// nodes. The two phases are distinct: scan produces word categories, replace
// applies a user-built replacement map.
package rewrite

// WordCategories is the model's structured extraction from a page sample. The
// lists are whatever the model returned: de-duplication and page fidelity are
// not enforced here.
type WordCategories struct {
	Nouns      []string `json:"nouns"`
	Verbs      []string `json:"verbs"`
	Adjectives []string `json:"adjectives"`
}

// Empty reports whether no words were extracted at all.
func (w *WordCategories) Empty() bool {
	return len(w.Nouns) == 0 && len(w.Verbs) == 0 && len(w.Adjectives) == 0
}

// Label couples an extracted word with its category, in the casing the model
// returned. One label is surfaced per word regardless of whether the word
// appears verbatim in the page.
type Label struct {
	Word     string
	Category string
}

// Labels flattens the categories into display order: nouns, verbs,
// adjectives.
func (w *WordCategories) Labels() []Label {
	labels := make([]Label, 0, len(w.Nouns)+len(w.Verbs)+len(w.Adjectives))
	for _, n := range w.Nouns {
		labels = append(labels, Label{Word: n, Category: "noun"})
	}
	for _, v := range w.Verbs {
		labels = append(labels, Label{Word: v, Category: "verb"})
	}
	for _, a := range w.Adjectives {
		labels = append(labels, Label{Word: a, Category: "adjective"})
	}
	return labels
}

// ReplacementMap maps original words, as surfaced to the user, to their
// replacements.
type ReplacementMap map[string]string

// BuildReplacementMap collects non-empty user inputs. An empty input means no
// replacement was requested for that word and the entry is dropped.
func BuildReplacementMap(inputs map[string]string) ReplacementMap {
	m := make(ReplacementMap)
	for word, replacement := range inputs {
		if replacement == "" {
			continue
		}
		m[word] = replacement
	}
	return m
}
