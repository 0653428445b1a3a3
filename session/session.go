// Package session manages the lifecycle of capability sessions. Its one hard
// rule is the resource-safety contract of the whole system: every created
// session is paired with exactly one disposal, on every exit path of the
// operation that created it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/probelab/panelprobe/host"
	"github.com/probelab/panelprobe/metrics"
)

// progressBuffer bounds the progress channel. Slow consumers miss snapshots;
// they never block or fail the download.
const progressBuffer = 64

// Progress is a normalized download-progress snapshot. Percent is computed
// from the host's {loaded, total} pair and reported monotonically
// non-decreasing even when the host's own stream repeats or reorders events.
type Progress struct {
	Loaded  float64
	Total   float64
	Percent float64
}

// Manager creates and destroys capability sessions.
type Manager struct {
	logger  *slog.Logger
	metrics *metrics.Set
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics set.
func WithMetrics(set *metrics.Set) Option {
	return func(m *Manager) {
		m.metrics = set
	}
}

// NewManager creates a session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger:  slog.Default(),
		metrics: metrics.NewDefault(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tracked wraps a host session with exactly-once destruction. Destroy may be
// called from any exit path; only the first call reaches the host.
type Tracked struct {
	id         string
	capability string
	sess       host.Session
	mgr        *Manager

	once       sync.Once
	destroyErr error
}

// ID returns the session's correlation ID.
func (t *Tracked) ID() string {
	return t.id
}

// Host returns the underlying host session.
func (t *Tracked) Host() host.Session {
	return t.sess
}

// Prompt issues a free-form prompt. Fails when the underlying capability is
// not a language model.
func (t *Tracked) Prompt(ctx context.Context, text string) (string, error) {
	p, ok := t.sess.(host.Prompter)
	if !ok {
		return "", errors.New("session does not support prompting")
	}
	return p.Prompt(ctx, text)
}

// Summarize condenses text. Fails when the underlying capability is not a
// summarizer.
func (t *Tracked) Summarize(ctx context.Context, text string) (string, error) {
	s, ok := t.sess.(host.Summarizer)
	if !ok {
		return "", errors.New("session does not support summarization")
	}
	return s.Summarize(ctx, text)
}

// Destroy releases the host-side session. Safe to call more than once; only
// the first call takes effect and later calls return its result.
func (t *Tracked) Destroy() error {
	t.once.Do(func() {
		t.destroyErr = t.sess.Destroy()
		t.mgr.metrics.SessionsDestroyed.WithLabelValues(t.capability).Inc()
		t.mgr.metrics.SessionsActive.Dec()
		t.mgr.logger.Debug("Session destroyed",
			"session_id", t.id,
			"capability", t.capability,
			"error", t.destroyErr)
	})
	return t.destroyErr
}

// Creation is an in-flight session creation. Progress delivers download
// snapshots in order and is closed when the creation resolves or fails; Wait
// blocks for the outcome. The channel is owned by the creation, never by the
// caller.
type Creation struct {
	// Progress streams normalized download progress. May deliver nothing at
	// all when the model is already on device.
	Progress <-chan Progress

	done    chan struct{}
	tracked *Tracked
	err     error
}

// Wait blocks until the creation resolves and returns the session or the
// creation error.
func (c *Creation) Wait() (*Tracked, error) {
	<-c.done
	return c.tracked, c.err
}

// StartCreate begins creating a session on the handle. Arguments are passed to
// the host as given; callers merge descriptor CheckArgs beforehand. The
// returned Creation owns the progress channel.
func (m *Manager) StartCreate(ctx context.Context, capabilityName string, h host.Handle, args host.Args) *Creation {
	ch := make(chan Progress, progressBuffer)
	c := &Creation{
		Progress: ch,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		defer close(ch)

		if h == nil {
			c.err = NewCreateError(errors.New("no capability handle"))
			return
		}

		var mu sync.Mutex
		var last float64
		monitor := func(ev host.ProgressEvent) {
			if ev.Total <= 0 {
				return
			}
			mu.Lock()
			pct := ev.Loaded / ev.Total * 100
			if pct > 100 {
				pct = 100
			}
			// The host's stream may repeat or reorder; never report a
			// decrease.
			if pct < last {
				pct = last
			}
			last = pct
			mu.Unlock()

			m.metrics.DownloadProgress.WithLabelValues(capabilityName).Set(pct)
			select {
			case ch <- Progress{Loaded: ev.Loaded, Total: ev.Total, Percent: pct}:
			default:
			}
		}

		sess, err := h.Create(ctx, args, monitor)
		if err != nil {
			c.err = NewCreateError(err)
			return
		}

		t := &Tracked{
			id:         uuid.New().String(),
			capability: capabilityName,
			sess:       sess,
			mgr:        m,
		}
		m.metrics.SessionsCreated.WithLabelValues(capabilityName).Inc()
		m.metrics.SessionsActive.Inc()
		m.logger.Debug("Session created",
			"session_id", t.id,
			"capability", capabilityName)
		c.tracked = t
	}()

	return c
}

// Create creates a session, discarding progress. The progress channel is
// buffered and dropped on overflow, so ignoring it cannot block a download.
func (m *Manager) Create(ctx context.Context, capabilityName string, h host.Handle, args host.Args) (*Tracked, error) {
	return m.StartCreate(ctx, capabilityName, h, args).Wait()
}
