package page

import (
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Guard decides whether a page URL may be read or rewritten. Restricted
// schemes always fail; allow and deny patterns are doublestar globs matched
// against the full URL.
type Guard struct {
	restrictedSchemes map[string]bool
	allow             []string
	deny              []string
}

// NewGuard creates a guard from scheme and pattern lists. An empty allow
// list permits every URL not denied.
func NewGuard(restrictedSchemes, allow, deny []string) *Guard {
	schemes := make(map[string]bool, len(restrictedSchemes))
	for _, s := range restrictedSchemes {
		schemes[strings.ToLower(s)] = true
	}
	return &Guard{
		restrictedSchemes: schemes,
		allow:             allow,
		deny:              deny,
	}
}

// Check returns nil when the URL may be scripted, or an InjectionError
// naming the first rule that refused it.
func (g *Guard) Check(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return NewInjectionError(rawURL, "empty URL", nil)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return NewInjectionError(rawURL, "unparseable URL", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if g.restrictedSchemes[scheme] {
		return NewInjectionError(rawURL, "restricted scheme "+scheme, nil)
	}

	for _, pattern := range g.deny {
		if matched, _ := doublestar.Match(pattern, rawURL); matched {
			return NewInjectionError(rawURL, "denied by pattern "+pattern, nil)
		}
	}

	if len(g.allow) == 0 {
		return nil
	}
	for _, pattern := range g.allow {
		if matched, _ := doublestar.Match(pattern, rawURL); matched {
			return nil
		}
	}
	return NewInjectionError(rawURL, "not in allow list", nil)
}
