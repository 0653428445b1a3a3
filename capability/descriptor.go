// Package capability locates on-device AI capability objects in the host
// environment and normalizes their readiness status. Hosts have exposed the
// same capability under different global locations across revisions, so
// resolution is table-driven: an ordered list of location rules evaluated in
// priority order, first match wins.
package capability

import "github.com/probelab/panelprobe/host"

// Descriptor identifies where in the host environment a capability lives and
// which probe arguments it expects. Descriptors are static configuration,
// defined once per capability and never mutated.
type Descriptor struct {
	// Name is the human-readable capability name.
	Name string

	// Key is the host binding name ("Summarizer", "languageModel").
	Key string

	// Namespace, when "ai", selects the nested legacy namespace first.
	Namespace string

	// Fallback is an optional top-level binding name tried last.
	Fallback string

	// CheckArgs are passed to the availability check and merged into session
	// creation arguments.
	CheckArgs host.Args
}

// Resolved is the outcome of one resolution. Handle is nil when the
// capability was not found anywhere; LocationPath records where it was found.
type Resolved struct {
	Handle       host.Handle
	LocationPath string
}

// Found reports whether resolution produced a handle.
func (r Resolved) Found() bool {
	return r.Handle != nil
}

// Descriptors returns the built-in capability table: the six on-device text
// capabilities, each with the locations it has occupied across host revisions.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Name:      "Prompt",
			Key:       "languageModel",
			Namespace: "ai",
			Fallback:  "LanguageModel",
		},
		{
			Name:      "Summarizer",
			Key:       "summarizer",
			Namespace: "ai",
			Fallback:  "Summarizer",
			CheckArgs: host.Args{
				"type":   "key-points",
				"format": "markdown",
				"length": "medium",
			},
		},
		{
			Name: "Translator",
			Key:  "Translator",
			CheckArgs: host.Args{
				"sourceLanguage": "en",
				"targetLanguage": "es",
			},
		},
		{
			Name: "Language Detector",
			Key:  "LanguageDetector",
		},
		{
			Name:      "Writer",
			Key:       "writer",
			Namespace: "ai",
			Fallback:  "Writer",
		},
		{
			Name:      "Rewriter",
			Key:       "rewriter",
			Namespace: "ai",
			Fallback:  "Rewriter",
		},
	}
}

// DescriptorByName returns the built-in descriptor with the given name.
// Returns false for unknown names.
func DescriptorByName(name string) (Descriptor, bool) {
	for _, d := range Descriptors() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
