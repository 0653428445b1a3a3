package capability

import (
	"context"
	"log/slog"

	"github.com/probelab/panelprobe/host"
)

// Rule is one candidate location for a capability: a predicate deciding
// whether the rule applies to a descriptor, and a path builder naming where to
// look. Rules are evaluated in priority order; the first rule whose predicate
// matches and whose path resolves wins.
type Rule struct {
	// Name identifies the rule in logs.
	Name string

	// Match reports whether this rule applies to the descriptor.
	Match func(Descriptor) bool

	// Path builds the dotted lookup path for the descriptor.
	Path func(Descriptor) string
}

// DefaultRules returns the location rules hosts have used across revisions:
// the nested "ai" namespace, the top-level binding for descriptors outside
// that namespace, then the legacy fallback name. A namespaced descriptor
// never probes its key top-level; its non-namespaced location is the
// fallback.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "ai-namespace",
			Match: func(d Descriptor) bool { return d.Namespace == "ai" },
			Path:  func(d Descriptor) string { return "ai." + d.Key },
		},
		{
			Name:  "top-level",
			Match: func(d Descriptor) bool { return d.Namespace != "ai" },
			Path:  func(d Descriptor) string { return d.Key },
		},
		{
			Name:  "fallback",
			Match: func(d Descriptor) bool { return d.Fallback != "" },
			Path:  func(d Descriptor) string { return d.Fallback },
		},
	}
}

// Registry resolves capability descriptors against a host binding using an
// ordered rule table. It holds no per-probe state; resolution is recomputed on
// every call.
type Registry struct {
	rules  []Rule
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRules replaces the default location rules.
func WithRules(rules []Rule) RegistryOption {
	return func(r *Registry) {
		r.rules = rules
	}
}

// NewRegistry creates a registry with the default location rules.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve locates the descriptor's capability object in the host environment.
// Rules are tried in order; the first successful lookup wins. When nothing
// matches, the result has a nil handle and an empty location path.
func (r *Registry) Resolve(ctx context.Context, binding host.Binding, d Descriptor) Resolved {
	for _, rule := range r.rules {
		if rule.Match == nil || rule.Path == nil || !rule.Match(d) {
			continue
		}
		path := rule.Path(d)
		if path == "" {
			continue
		}
		if handle, ok := binding.Lookup(ctx, path); ok {
			r.logger.Debug("Capability resolved",
				"capability", d.Name,
				"rule", rule.Name,
				"path", path)
			return Resolved{Handle: handle, LocationPath: path}
		}
	}

	r.logger.Debug("Capability not found", "capability", d.Name)
	return Resolved{}
}
