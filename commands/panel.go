package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/probelab/panelprobe/config"
	"github.com/probelab/panelprobe/page"
)

func newPanelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Interactive panel driving all operations on one browser connection",
		Long: `Panel keeps a single browser connection open and reads operations from
stdin: status, download <capability>, summarize [url], scan [url],
swap [url], help, quit. Capabilities are re-resolved on every operation,
so a capability appearing or disappearing mid-session is picked up.

When a config file was passed with --config it is watched and changes
take effect on the next operation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPanel(cmd)
		},
	}
	return cmd
}

func (a *App) runPanel(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	bridge, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer bridge.Close()

	var reloads <-chan *config.Config
	if a.cfgPath != "" {
		watcher, err := config.NewWatcher(a.cfgPath, config.NewLoader(a.logger),
			config.WithWatcherLogger(a.logger))
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer watcher.Stop()
		reloads = watcher.Reloads()
	}

	fmt.Fprintln(out, "panelprobe panel - type 'help' for operations, 'quit' to leave")
	// One buffered reader over stdin for the whole session. Swap reads its
	// replacement inputs from the same reader, so a second buffered layer
	// would steal the bytes this one already holds.
	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		a.drainReloads(reloads)

		fmt.Fprint(out, "> ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			continue
		}
		op, arg := fields[0], ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		var opErr error
		switch op {
		case "quit", "exit":
			return nil
		case "help":
			printPanelHelp(out)
		case "status":
			opErr = a.runStatus(ctx, out, bridge, "")
		case "download":
			if arg == "" {
				opErr = fmt.Errorf("usage: download <capability>")
				break
			}
			opErr = a.runStatus(ctx, out, bridge, arg)
		case "summarize":
			opErr = a.runSummarize(ctx, out, bridge, arg)
		case "scan":
			opErr = a.panelScan(ctx, out, bridge, arg)
		case "swap":
			opErr = a.runSwap(ctx, reader, out, bridge, arg, false)
		default:
			opErr = fmt.Errorf("unknown operation %q (try 'help')", op)
		}

		// Operation failures are reported, not fatal; the panel keeps going.
		if opErr != nil {
			fmt.Fprintf(out, "error: %v\n", opErr)
		}
	}
}

func (a *App) panelScan(ctx context.Context, out io.Writer, bridge *page.Bridge, url string) error {
	tab, err := a.contentTab(ctx, bridge, url)
	if err != nil {
		return err
	}
	words, err := a.runScan(ctx, tab)
	if err != nil {
		return err
	}
	printWords(out, words)
	return nil
}

// drainReloads applies any pending config updates without blocking.
func (a *App) drainReloads(reloads <-chan *config.Config) {
	for {
		select {
		case cfg, ok := <-reloads:
			if !ok {
				return
			}
			a.cfg = cfg
			a.logger.Info("Applied reloaded config")
		default:
			return
		}
	}
}

func printPanelHelp(out io.Writer) {
	fmt.Fprintln(out, "Operations:")
	fmt.Fprintln(out, "  status                 probe all capabilities")
	fmt.Fprintln(out, "  download <capability>  probe, then drive a model download")
	fmt.Fprintln(out, "  summarize [url]        summarize the active page or a url")
	fmt.Fprintln(out, "  scan [url]             extract notable words")
	fmt.Fprintln(out, "  swap [url]             interactively replace words")
	fmt.Fprintln(out, "  quit                   leave the panel")
}
