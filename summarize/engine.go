package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/probelab/panelprobe/host"
	"github.com/probelab/panelprobe/metrics"
)

// DefaultMaxPasses bounds the reduce loop. Key-point compression shrinks text
// substantially each pass, so a pathological input that still exceeds the
// chunk size after this many passes is treated as non-converging rather than
// looping forever.
const DefaultMaxPasses = 8

// ErrDidNotConverge is returned when repeated summarization passes fail to
// shrink the text under the chunk size.
var ErrDidNotConverge = errors.New("summarization did not converge")

// Session is the slice of a summarizer session the engine uses.
type Session interface {
	Summarize(ctx context.Context, text string) (string, error)
	Destroy() error
}

// Factory creates one summarizer session, configured for key-point markdown
// output. The engine creates one session per chunk batch and destroys it when
// the batch completes or fails.
type Factory func(ctx context.Context) (Session, error)

// Config holds engine tuning.
type Config struct {
	// ChunkSize is the largest text a single call accepts, in characters.
	ChunkSize int

	// MaxPasses bounds the recursive reduce loop.
	MaxPasses int
}

// DefaultConfig returns the spec'd chunk bound with a convergence guard.
func DefaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		MaxPasses: DefaultMaxPasses,
	}
}

// SessionArgs returns the summarizer session configuration used for every
// batch: key points, markdown, medium length.
func SessionArgs() host.Args {
	return host.Args{
		"type":   "key-points",
		"format": "markdown",
		"length": "medium",
	}
}

// Engine runs chunked recursive summarization. Purely functional over its
// input; no state survives a call.
type Engine struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Set
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics set.
func WithMetrics(set *metrics.Set) Option {
	return func(e *Engine) {
		e.metrics = set
	}
}

// NewEngine creates an engine. Zero config fields fall back to defaults.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = DefaultMaxPasses
	}
	e := &Engine{
		config:  cfg,
		logger:  slog.Default(),
		metrics: metrics.NewDefault(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize reduces text to a single summary. Text at or under the chunk size
// is summarized in one call. Larger text is split on sentence boundaries,
// greedily packed into chunks, summarized chunk by chunk with one session per
// batch, joined with a blank line, and fed back in until it fits. Any chunk
// failure propagates after the batch session is destroyed; no partial summary
// is returned.
func (e *Engine) Summarize(ctx context.Context, text string, factory Factory) (string, error) {
	for pass := 1; pass <= e.config.MaxPasses; pass++ {
		if len(text) <= e.config.ChunkSize {
			e.metrics.SummarizePasses.Observe(float64(pass))
			return e.summarizeOne(ctx, text, factory)
		}

		chunks := PackChunks(SplitSentences(text), e.config.ChunkSize)
		e.logger.Debug("Reducing text",
			"pass", pass,
			"input_chars", len(text),
			"chunks", len(chunks))

		parts, err := e.summarizeBatch(ctx, chunks, factory)
		if err != nil {
			return "", err
		}
		text = strings.Join(parts, "\n\n")
	}

	return "", fmt.Errorf("%w after %d passes (%d chars remaining)",
		ErrDidNotConverge, e.config.MaxPasses, len(text))
}

// summarizeOne handles the base case: one session, one call, one disposal.
func (e *Engine) summarizeOne(ctx context.Context, text string, factory Factory) (string, error) {
	sess, err := factory(ctx)
	if err != nil {
		return "", err
	}
	defer e.destroy(sess)

	return sess.Summarize(ctx, text)
}

// summarizeBatch summarizes chunks sequentially, in order, sharing one
// session. The session is destroyed even when a mid-batch call fails.
func (e *Engine) summarizeBatch(ctx context.Context, chunks []string, factory Factory) ([]string, error) {
	sess, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	defer e.destroy(sess)

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		part, err := sess.Summarize(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (e *Engine) destroy(sess Session) {
	if err := sess.Destroy(); err != nil {
		e.logger.Warn("Failed to destroy summarizer session", "error", err)
	}
}
