// Package page connects to a Chromium browser over the DevTools protocol and
// exposes the pieces panelprobe needs: content extraction, a URL guard, and a
// bridge to the page's built-in AI interfaces. Everything crossing into the
// page goes by evaluated scripts; values come back by serialization, never by
// shared references.
package page

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BridgeConfig configures how the bridge reaches a browser.
type BridgeConfig struct {
	// DebuggerURL is the DevTools websocket URL of a running browser. Empty
	// launches a browser instead of attaching.
	DebuggerURL string

	// Headless controls the launched browser's mode. Ignored when attaching.
	Headless bool

	// ConnectTimeout bounds the attach/launch handshake. Zero means no bound.
	ConnectTimeout time.Duration
}

// Bridge owns the DevTools connection.
type Bridge struct {
	cfg    BridgeConfig
	logger *slog.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched bool
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBridgeLogger sets the logger for the bridge.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBridge creates a bridge. Call Connect before using it.
func NewBridge(cfg BridgeConfig, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Connect attaches to the configured debugger URL, or launches a browser
// when none is configured.
func (b *Bridge) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return nil
	}

	controlURL := b.cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(b.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		controlURL = url
		b.launched = true
		b.logger.Info("Launched browser", slog.Bool("headless", b.cfg.Headless))
	} else {
		b.logger.Info("Attaching to browser", slog.String("debugger_url", controlURL))
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	dial := browser
	if b.cfg.ConnectTimeout > 0 {
		dial = browser.Timeout(b.cfg.ConnectTimeout)
	}
	if err := dial.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}

	b.browser = browser
	return nil
}

// Close disconnects from the browser. A launched browser is closed; an
// attached one is left running.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}

	var err error
	if b.launched {
		err = b.browser.Close()
	}
	b.browser = nil
	return err
}

// Open navigates a new page to the given URL and waits for load.
func (b *Bridge) Open(ctx context.Context, url string) (*Tab, error) {
	b.mu.Lock()
	browser := b.browser
	b.mu.Unlock()
	if browser == nil {
		return nil, fmt.Errorf("bridge not connected")
	}

	p, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := p.Context(ctx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for page load: %w", err)
	}
	return newTab(p, b.logger), nil
}

// ActivePage returns the first http(s) page the browser has open. Browsers
// with only internal pages (new tab, settings) have nothing scriptable.
func (b *Bridge) ActivePage(ctx context.Context) (*Tab, error) {
	b.mu.Lock()
	browser := b.browser
	b.mu.Unlock()
	if browser == nil {
		return nil, fmt.Errorf("bridge not connected")
	}

	pages, err := browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, "http://") || strings.HasPrefix(info.URL, "https://") {
			return newTab(p.Context(ctx), b.logger), nil
		}
	}
	return nil, NewInjectionError("", "no http(s) page open", nil)
}
