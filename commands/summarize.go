package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/probelab/panelprobe/capability"
	"github.com/probelab/panelprobe/page"
	"github.com/probelab/panelprobe/session"
	"github.com/probelab/panelprobe/summarize"
)

func newSummarizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [url]",
		Short: "Summarize a page with the on-device summarizer",
		Long: `Summarize converts the page to markdown and reduces it to key points
with the browser's built-in summarizer. Pages larger than one model call
are split on sentence boundaries and reduced recursively.

Without a URL the browser's active page is summarized.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url := ""
			if len(args) > 0 {
				url = args[0]
			}

			bridge, err := app.connect(ctx)
			if err != nil {
				return err
			}
			defer bridge.Close()

			return app.runSummarize(ctx, cmd.OutOrStdout(), bridge, url)
		},
	}
	return cmd
}

// runSummarize reduces the page's content to a key-point summary.
func (a *App) runSummarize(ctx context.Context, out io.Writer, bridge *page.Bridge, url string) error {
	tab, err := a.contentTab(ctx, bridge, url)
	if err != nil {
		return err
	}

	binding := page.NewHostBinding(tab, a.logger)
	registry := capability.NewRegistry(capability.WithLogger(a.logger))

	d, _ := capability.DescriptorByName("Summarizer")
	resolved, err := a.requireUsable(ctx, registry, binding, d)
	if err != nil {
		return err
	}

	markdown, err := tab.Markdown(page.NewConverter())
	if err != nil {
		return err
	}
	if markdown == "" {
		return fmt.Errorf("page has no content to summarize")
	}

	mgr := session.NewManager(session.WithLogger(a.logger), session.WithMetrics(a.metrics))
	args := d.CheckArgs.Merge(summarize.SessionArgs())
	factory := func(ctx context.Context) (summarize.Session, error) {
		tracked, err := mgr.Create(ctx, d.Name, resolved.Handle, args)
		if err != nil {
			return nil, err
		}
		return tracked, nil
	}

	engine := summarize.NewEngine(summarize.Config{
		ChunkSize: a.cfg.Summarize.ChunkSize,
		MaxPasses: a.cfg.Summarize.MaxPasses,
	}, summarize.WithLogger(a.logger), summarize.WithMetrics(a.metrics))

	summary, err := engine.Summarize(ctx, markdown, factory)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, summary)
	return nil
}

// requireUsable resolves a capability and fails with guidance when it is not
// ready for sessions.
func (a *App) requireUsable(ctx context.Context, registry *capability.Registry, binding *page.HostBinding, d capability.Descriptor) (capability.Resolved, error) {
	resolved := registry.Resolve(ctx, binding, d)
	if !resolved.Found() {
		a.metrics.ProbesTotal.WithLabelValues(d.Name, capability.StatusNoHandle.String()).Inc()
		return capability.Resolved{}, fmt.Errorf("capability %s is not present in this browser", d.Name)
	}

	status := registry.ProbeAvailability(ctx, resolved.Handle, d.CheckArgs)
	a.metrics.ProbesTotal.WithLabelValues(d.Name, status.String()).Inc()

	if status.NeedsDownload() {
		return capability.Resolved{}, fmt.Errorf(
			"capability %s needs a model download; run: panelprobe status --download %q",
			d.Name, d.Name)
	}
	if !status.Usable() {
		return capability.Resolved{}, fmt.Errorf("capability %s is not usable (status %s)", d.Name, status)
	}
	return resolved, nil
}
