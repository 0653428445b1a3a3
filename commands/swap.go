package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/probelab/panelprobe/page"
	"github.com/probelab/panelprobe/rewrite"
)

func newSwapCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "swap [url]",
		Short: "Interactively replace words in a page's text",
		Long: `Swap extracts notable words from the page (see scan), asks for a
replacement for each, and rewrites matching text in the live page.
Matching is case-insensitive and by substring; only text nodes change,
never markup, attributes, scripts, or styles.

Empty input skips a word. Without a URL the browser's active page is
rewritten. With --dry-run the replacements are applied to a copy of the
page's HTML and only the affected text node count is reported.`,
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

			return app.runSwap(ctx, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), bridge, url, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without touching the page")
	return cmd
}

// runSwap drives the scan-prompt-replace pipeline against one page. The
// reader must be the caller's only reader over its input stream; a second
// buffered layer on the same stream would steal pending bytes.
func (a *App) runSwap(ctx context.Context, in *bufio.Reader, out io.Writer, bridge *page.Bridge, url string, dryRun bool) error {
	tab, err := a.contentTab(ctx, bridge, url)
	if err != nil {
		return err
	}

	pageURL, err := tab.URL()
	if err != nil {
		return err
	}

	words, err := a.runScan(ctx, tab)
	if err != nil {
		return err
	}
	if words.Empty() {
		fmt.Fprintln(out, "No notable words found; nothing to replace.")
		return nil
	}

	inputs, err := collectReplacements(in, out, words)
	if err != nil {
		return err
	}

	replacements := rewrite.BuildReplacementMap(inputs)
	if len(replacements) == 0 {
		fmt.Fprintln(out, "All words skipped; page left unchanged.")
		return nil
	}

	if dryRun {
		doc, err := tab.HTML()
		if err != nil {
			return err
		}
		return previewSwap(out, doc, replacements, pageURL)
	}

	if err := tab.InjectReplacements(ctx, replacements); err != nil {
		return err
	}

	fmt.Fprintf(out, "Replaced %d word(s) on %s\n", len(replacements), pageURL)
	return nil
}

// previewSwap applies the replacements to a snapshot of the page's HTML and
// reports how many text nodes would change. The live page is not touched.
func previewSwap(out io.Writer, doc string, replacements rewrite.ReplacementMap, pageURL string) error {
	_, rewritten, err := rewrite.ReplaceInHTML(doc, replacements)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dry run: %d word(s) would rewrite %d text node(s) on %s\n",
		len(replacements), rewritten, pageURL)
	return nil
}

// collectReplacements prompts for a replacement per extracted word. Empty
// input skips the word; end of input stops early with what was gathered.
func collectReplacements(reader *bufio.Reader, out io.Writer, words *rewrite.WordCategories) (map[string]string, error) {
	inputs := make(map[string]string)

	for _, label := range words.Labels() {
		fmt.Fprintf(out, "Replace %q (%s) with [empty to skip]: ", label.Word, label.Category)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read replacement: %w", err)
		}
		if value := strings.TrimSpace(line); value != "" {
			inputs[label.Word] = value
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return inputs, nil
}
