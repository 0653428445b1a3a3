// Package commands implements the panelprobe CLI: probing the browser's
// on-device AI capabilities, summarizing pages, and rewriting page text.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/probelab/panelprobe/config"
	"github.com/probelab/panelprobe/metrics"
	"github.com/probelab/panelprobe/page"
)

// App carries the resolved runtime shared by all subcommands.
type App struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	metrics *metrics.Set
}

// NewRootCmd builds the panelprobe command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath  string
		logLevel    string
		debuggerURL string
		headless    bool
	)
	app := &App{}

	cmd := &cobra.Command{
		Use:   "panelprobe",
		Short: "Probe and drive the browser's on-device AI capabilities",
		Long: `Panelprobe connects to a Chromium browser over the DevTools protocol
and works with its built-in on-device AI capabilities (language model,
summarizer, translator, language detector, writer, rewriter).

It can report which capabilities are available, summarize the page the
browser has open, and rewrite page text by swapping words the language
model extracted.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLogLevel(logLevel),
			}))
			slog.SetDefault(logger)

			loader := config.NewLoader(logger)
			if err := loader.EnsureUserConfig(); err != nil {
				logger.Warn("Failed to create default user config", "error", err)
			}
			cfg, err := loader.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debuggerURL != "" {
				cfg.Browser.DebuggerURL = debuggerURL
			}
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}

			app.cfg = cfg
			app.cfgPath = configPath
			app.logger = logger
			app.metrics = metrics.NewDefault()
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&debuggerURL, "debugger-url", "", "DevTools websocket URL of a running browser")
	cmd.PersistentFlags().BoolVar(&headless, "headless", false, "Launch the browser headless when not attaching")

	cmd.AddCommand(
		newStatusCmd(app),
		newSummarizeCmd(app),
		newScanCmd(app),
		newSwapCmd(app),
		newPanelCmd(app),
		newVersionCmd(),
	)
	return cmd
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connect opens the DevTools bridge per the browser config.
func (a *App) connect(ctx context.Context) (*page.Bridge, error) {
	bridge := page.NewBridge(page.BridgeConfig{
		DebuggerURL:    a.cfg.Browser.DebuggerURL,
		Headless:       a.cfg.Browser.Headless,
		ConnectTimeout: a.cfg.Browser.ConnectTimeout,
	}, page.WithBridgeLogger(a.logger))

	if err := bridge.Connect(ctx); err != nil {
		return nil, err
	}
	return bridge, nil
}

// guard builds the URL guard from the pages config.
func (a *App) guard() *page.Guard {
	return page.NewGuard(a.cfg.Pages.RestrictedSchemes, a.cfg.Pages.Allow, a.cfg.Pages.Deny)
}

// contentTab returns the page a content operation works on: the given URL
// when set, otherwise the browser's active page. The URL guard is applied
// either way.
func (a *App) contentTab(ctx context.Context, bridge *page.Bridge, url string) (*page.Tab, error) {
	var (
		tab *page.Tab
		err error
	)
	if url != "" {
		if err := a.guard().Check(url); err != nil {
			return nil, err
		}
		tab, err = bridge.Open(ctx, url)
	} else {
		tab, err = bridge.ActivePage(ctx)
	}
	if err != nil {
		return nil, err
	}

	pageURL, err := tab.URL()
	if err != nil {
		return nil, err
	}
	if err := a.guard().Check(pageURL); err != nil {
		return nil, err
	}
	return tab, nil
}

// probeTab returns a page to evaluate capability probes in. Probing does not
// touch page content, so any page will do; a browser with nothing open gets a
// blank one.
func (a *App) probeTab(ctx context.Context, bridge *page.Bridge) (*page.Tab, error) {
	tab, err := bridge.ActivePage(ctx)
	if err == nil {
		return tab, nil
	}
	if !page.IsInjectionError(err) {
		return nil, err
	}
	return bridge.Open(ctx, "about:blank")
}
