package page

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/probelab/panelprobe/host"
)

// pollInterval is how often session creation is polled for completion and
// download progress.
const pollInterval = 150 * time.Millisecond

// resolveJS walks a dotted path from window, yielding undefined on any
// missing step. Prepended to every script that addresses a capability.
const resolveJS = `const resolve = (p) => p.split('.').reduce((o, k) => (o == null ? undefined : o[k]), window);`

// stateJS lazily initializes the in-page session table. Sessions live in the
// page because they cannot cross the DevTools boundary by value.
const stateJS = `const state = window.__pp = window.__pp || { sessions: {}, pending: {}, progress: {} };`

// HostBinding exposes the page's built-in AI objects as host interfaces.
// Every method is an evaluated script; handles and sessions hold only the
// page reference and an identifier.
type HostBinding struct {
	page   *rod.Page
	logger *slog.Logger
}

// NewHostBinding creates a binding rooted at the given tab's page.
func NewHostBinding(tab *Tab, logger *slog.Logger) *HostBinding {
	if logger == nil {
		logger = slog.Default()
	}
	return &HostBinding{page: tab.Page(), logger: logger}
}

// Lookup reports whether a capability object exists at the dotted path.
func (b *HostBinding) Lookup(ctx context.Context, path string) (host.Handle, bool) {
	res, err := b.eval(ctx, resolveJS+`
		return resolve(path) != null;`, "path", path)
	if err != nil {
		b.logger.Debug("Capability lookup failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, false
	}
	if !res.Value.Bool() {
		return nil, false
	}
	return &hostHandle{binding: b, path: path}, true
}

// eval runs a script body with named arguments against the page. The body
// sees each name as a parameter and must use an explicit return.
func (b *HostBinding) eval(ctx context.Context, body string, namesAndArgs ...interface{}) (*proto.RuntimeRemoteObject, error) {
	names := ""
	args := make([]interface{}, 0, len(namesAndArgs)/2)
	for i := 0; i+1 < len(namesAndArgs); i += 2 {
		if i > 0 {
			names += ", "
		}
		names += namesAndArgs[i].(string)
		args = append(args, namesAndArgs[i+1])
	}

	return b.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           fmt.Sprintf("async (%s) => {%s}", names, body),
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
}

// hostHandle is a borrowed reference to one capability object.
type hostHandle struct {
	binding *HostBinding
	path    string
}

// HasAvailability reports whether the object exposes an availability check.
func (h *hostHandle) HasAvailability(ctx context.Context) bool {
	res, err := h.binding.eval(ctx, resolveJS+`
		const obj = resolve(path);
		return obj != null && typeof obj.availability === 'function';`,
		"path", h.path)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// Availability invokes the host-side availability check. Both answer shapes
// are preserved: a bare token string or a structured object.
func (h *hostHandle) Availability(ctx context.Context, args host.Args) (host.Result, error) {
	res, err := h.binding.eval(ctx, resolveJS+`
		const obj = resolve(path);
		if (obj == null) throw new Error('capability gone: ' + path);
		const r = hasArgs ? await obj.availability(args) : await obj.availability();
		return JSON.stringify(typeof r === 'string' ? { token: r } : { object: r });`,
		"path", h.path,
		"args", map[string]any(args),
		"hasArgs", args != nil)
	if err != nil {
		return host.Result{}, fmt.Errorf("availability check on %s: %w", h.path, err)
	}

	var out struct {
		Token  string         `json:"token"`
		Object map[string]any `json:"object"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return host.Result{}, fmt.Errorf("decode availability result from %s: %w", h.path, err)
	}
	return host.Result{Token: out.Token, Object: out.Object}, nil
}

// Create starts session creation in the page and polls until it resolves,
// draining download-progress events into the monitor along the way. Creation
// is started fire-and-forget because model downloads can outlive any single
// evaluation round-trip.
func (h *hostHandle) Create(ctx context.Context, args host.Args, monitor func(host.ProgressEvent)) (host.Session, error) {
	id := uuid.NewString()

	_, err := h.binding.eval(ctx, resolveJS+stateJS+`
		state.pending[id] = { done: false, error: null };
		state.progress[id] = [];
		const obj = resolve(path);
		if (obj == null) {
			state.pending[id] = { done: true, error: 'capability gone: ' + path };
			return;
		}
		const opts = Object.assign({}, args);
		if (wantMonitor) {
			opts.monitor = (m) => {
				m.addEventListener('downloadprogress', (e) => {
					state.progress[id].push({
						loaded: e.loaded,
						total: e.total === undefined ? 1 : e.total,
					});
				});
			};
		}
		Promise.resolve(obj.create(opts)).then((session) => {
			state.sessions[id] = session;
			state.pending[id].done = true;
		}).catch((err) => {
			state.pending[id].error = String((err && err.message) || err);
			state.pending[id].done = true;
		});
		return;`,
		"id", id,
		"path", h.path,
		"args", map[string]any(args),
		"wantMonitor", monitor != nil)
	if err != nil {
		return nil, fmt.Errorf("start session creation on %s: %w", h.path, err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.discard(id)
			return nil, ctx.Err()
		case <-ticker.C:
		}

		res, err := h.binding.eval(ctx, `
			const state = window.__pp;
			const p = state.pending[id];
			if (!p) return JSON.stringify({ done: true, error: 'creation state lost' });
			const events = state.progress[id] ? state.progress[id].splice(0) : [];
			return JSON.stringify({ done: p.done, error: p.error, events: events });`,
			"id", id)
		if err != nil {
			h.discard(id)
			return nil, fmt.Errorf("poll session creation on %s: %w", h.path, err)
		}

		var status struct {
			Done   bool    `json:"done"`
			Error  *string `json:"error"`
			Events []struct {
				Loaded float64 `json:"loaded"`
				Total  float64 `json:"total"`
			} `json:"events"`
		}
		if err := json.Unmarshal([]byte(res.Value.Str()), &status); err != nil {
			h.discard(id)
			return nil, fmt.Errorf("decode creation status from %s: %w", h.path, err)
		}

		if monitor != nil {
			for _, ev := range status.Events {
				monitor(host.ProgressEvent{Loaded: ev.Loaded, Total: ev.Total})
			}
		}

		if !status.Done {
			continue
		}
		if status.Error != nil && *status.Error != "" {
			h.discard(id)
			return nil, fmt.Errorf("create session on %s: %s", h.path, *status.Error)
		}
		return &hostSession{binding: h.binding, id: id, path: h.path}, nil
	}
}

// discard drops in-page creation state for an abandoned session. A session
// object that resolves afterwards is destroyed in the page.
func (h *hostHandle) discard(id string) {
	_, err := h.binding.eval(context.Background(), `
		const state = window.__pp;
		if (!state) return;
		const sess = state.sessions[id];
		delete state.sessions[id];
		delete state.pending[id];
		delete state.progress[id];
		if (sess && typeof sess.destroy === 'function') sess.destroy();
		return;`,
		"id", id)
	if err != nil {
		h.binding.logger.Debug("Failed to discard abandoned session",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
}

// hostSession is a created capability session living in the page.
type hostSession struct {
	binding *HostBinding
	id      string
	path    string
}

// Destroy releases the in-page session object and its bookkeeping.
func (s *hostSession) Destroy() error {
	_, err := s.binding.eval(context.Background(), `
		const state = window.__pp;
		if (!state) return;
		const sess = state.sessions[id];
		delete state.sessions[id];
		delete state.pending[id];
		delete state.progress[id];
		if (sess && typeof sess.destroy === 'function') sess.destroy();
		return;`,
		"id", s.id)
	if err != nil {
		return fmt.Errorf("destroy session on %s: %w", s.path, err)
	}
	return nil
}

// Prompt sends text to a language model session.
func (s *hostSession) Prompt(ctx context.Context, text string) (string, error) {
	res, err := s.binding.eval(ctx, `
		const sess = window.__pp && window.__pp.sessions[id];
		if (!sess) throw new Error('session gone');
		return await sess.prompt(text);`,
		"id", s.id,
		"text", text)
	if err != nil {
		return "", fmt.Errorf("prompt on %s: %w", s.path, err)
	}
	return res.Value.Str(), nil
}

// Summarize condenses text through a summarizer session.
func (s *hostSession) Summarize(ctx context.Context, text string) (string, error) {
	res, err := s.binding.eval(ctx, `
		const sess = window.__pp && window.__pp.sessions[id];
		if (!sess) throw new Error('session gone');
		return await sess.summarize(text);`,
		"id", s.id,
		"text", text)
	if err != nil {
		return "", fmt.Errorf("summarize on %s: %w", s.path, err)
	}
	return res.Value.Str(), nil
}
