// Package host defines the interfaces through which panelprobe reaches the
// on-device AI capability objects exposed by the browser. Implementations live
// behind an RPC-style boundary (the DevTools protocol), so handles are borrowed
// references: they are never mutated and carry no Go-side state beyond their
// location.
package host

import "context"

// Args is the argument bag passed to availability checks and session creation.
// Keys and values are serialized across the boundary as JSON.
type Args map[string]any

// Clone returns a shallow copy, so callers can merge without mutating shared
// descriptor arguments.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge returns a new Args with entries from other overlaid on a.
func (a Args) Merge(other Args) Args {
	if len(other) == 0 {
		return a.Clone()
	}
	out := a.Clone()
	if out == nil {
		out = make(Args, len(other))
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Result is a host availability response. Hosts have answered with either a
// bare status token or a structured object across API revisions; both shapes
// are preserved here and normalized by the capability prober.
type Result struct {
	// Token is set when the host answered with a plain status string.
	Token string

	// Object is set when the host answered with a structured object.
	Object map[string]any
}

// ProgressEvent is one raw download-progress snapshot from the host. Events
// may arrive out of order or repeated; consumers normalize them.
type ProgressEvent struct {
	Loaded float64
	Total  float64
}

// Handle is a borrowed reference to one capability object in the host
// environment.
type Handle interface {
	// HasAvailability reports whether the object exposes an availability
	// check. Objects without one are assumed usable and probed downstream.
	HasAvailability(ctx context.Context) bool

	// Availability invokes the host's availability check. A nil args calls
	// the check with no arguments. Host-side throws surface as errors.
	Availability(ctx context.Context, args Args) (Result, error)

	// Create creates a session on the capability. When monitor is non-nil it
	// receives raw download-progress events until creation resolves.
	Create(ctx context.Context, args Args, monitor func(ProgressEvent)) (Session, error)
}

// Binding is the root of the host environment, where capability objects are
// looked up by dotted path (for example "Summarizer" or "ai.summarizer").
type Binding interface {
	Lookup(ctx context.Context, path string) (Handle, bool)
}

// Session is the common surface of a created capability session. Destroy
// releases the host-side object; callers must invoke it exactly once.
type Session interface {
	Destroy() error
}

// Prompter is a session that answers free-form prompts (LanguageModel).
type Prompter interface {
	Session
	Prompt(ctx context.Context, text string) (string, error)
}

// Summarizer is a session that condenses text (Summarizer capability).
type Summarizer interface {
	Session
	Summarize(ctx context.Context, text string) (string, error)
}
