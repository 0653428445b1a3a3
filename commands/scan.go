package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/probelab/panelprobe/capability"
	"github.com/probelab/panelprobe/page"
	"github.com/probelab/panelprobe/rewrite"
	"github.com/probelab/panelprobe/session"
)

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Extract notable words from a page with the language model",
		Long: `Scan samples the page's visible text and asks the on-device language
model for up to three nouns, verbs, and adjectives found in it.

Without a URL the browser's active page is scanned.`,
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

			tab, err := app.contentTab(ctx, bridge, url)
			if err != nil {
				return err
			}
			words, err := app.runScan(ctx, tab)
			if err != nil {
				return err
			}
			printWords(cmd.OutOrStdout(), words)
			return nil
		},
	}
	return cmd
}

// runScan extracts word categories from the page's text sample.
func (a *App) runScan(ctx context.Context, tab *page.Tab) (*rewrite.WordCategories, error) {
	snippet, err := tab.Snippet(a.cfg.Scan.SnippetLimit)
	if err != nil {
		return nil, err
	}
	if snippet == "" {
		return nil, fmt.Errorf("page has no visible text to scan")
	}

	binding := page.NewHostBinding(tab, a.logger)
	registry := capability.NewRegistry(capability.WithLogger(a.logger))

	d, _ := capability.DescriptorByName("Prompt")
	resolved, err := a.requireUsable(ctx, registry, binding, d)
	if err != nil {
		return nil, err
	}

	mgr := session.NewManager(session.WithLogger(a.logger), session.WithMetrics(a.metrics))
	factory := func(ctx context.Context) (rewrite.PromptSession, error) {
		tracked, err := mgr.Create(ctx, d.Name, resolved.Handle, d.CheckArgs)
		if err != nil {
			return nil, err
		}
		return tracked, nil
	}

	return rewrite.Scan(ctx, factory, snippet, a.logger)
}

func printWords(out io.Writer, words *rewrite.WordCategories) {
	if words.Empty() {
		fmt.Fprintln(out, "No notable words found.")
		return
	}
	fmt.Fprintf(out, "Nouns:      %v\n", words.Nouns)
	fmt.Fprintf(out, "Verbs:      %v\n", words.Verbs)
	fmt.Fprintf(out, "Adjectives: %v\n", words.Adjectives)
}
