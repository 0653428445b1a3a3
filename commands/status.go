package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/probelab/panelprobe/capability"
	"github.com/probelab/panelprobe/page"
	"github.com/probelab/panelprobe/session"
)

func newStatusCmd(app *App) *cobra.Command {
	var download string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report availability of every on-device AI capability",
		Long: `Status resolves each built-in AI capability against the browser and
probes its availability. With --download it additionally creates a
session on the named capability, which makes the browser fetch the
model, and reports download progress.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bridge, err := app.connect(ctx)
			if err != nil {
				return err
			}
			defer bridge.Close()

			return app.runStatus(ctx, cmd.OutOrStdout(), bridge, download)
		},
	}

	cmd.Flags().StringVar(&download, "download", "",
		"Capability name to create a session on, driving its model download")
	return cmd
}

// runStatus probes all capabilities and prints a status table. When download
// names a capability, a session is created on it afterwards.
func (a *App) runStatus(ctx context.Context, out io.Writer, bridge *page.Bridge, download string) error {
	tab, err := a.probeTab(ctx, bridge)
	if err != nil {
		return err
	}

	binding := page.NewHostBinding(tab, a.logger)
	registry := capability.NewRegistry(capability.WithLogger(a.logger))

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CAPABILITY\tSTATUS\tLOCATION")
	for _, d := range capability.Descriptors() {
		resolved := registry.Resolve(ctx, binding, d)

		var status capability.Status
		if !resolved.Found() {
			status = capability.StatusNoHandle
		} else {
			status = registry.ProbeAvailability(ctx, resolved.Handle, d.CheckArgs)
		}
		a.metrics.ProbesTotal.WithLabelValues(d.Name, status.String()).Inc()

		location := resolved.LocationPath
		if location == "" {
			location = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, status, location)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if download == "" {
		return nil
	}
	return a.runDownload(ctx, out, binding, registry, download)
}

// runDownload creates and immediately destroys a session on the named
// capability, printing download progress along the way.
func (a *App) runDownload(ctx context.Context, out io.Writer, binding *page.HostBinding, registry *capability.Registry, name string) error {
	d, ok := capability.DescriptorByName(name)
	if !ok {
		return fmt.Errorf("unknown capability %q", name)
	}

	resolved := registry.Resolve(ctx, binding, d)
	if !resolved.Found() {
		return fmt.Errorf("capability %s is not present in this browser", d.Name)
	}

	mgr := session.NewManager(session.WithLogger(a.logger), session.WithMetrics(a.metrics))
	creation := mgr.StartCreate(ctx, d.Name, resolved.Handle, d.CheckArgs)

	reported := false
	for p := range creation.Progress {
		fmt.Fprintf(out, "\rDownloading %s model: %3.0f%%", d.Name, p.Percent)
		reported = true
	}
	if reported {
		fmt.Fprintln(out)
	}

	tracked, err := creation.Wait()
	if err != nil {
		return fmt.Errorf("download %s: %w", d.Name, err)
	}
	if err := tracked.Destroy(); err != nil {
		a.logger.Warn("Failed to destroy download session", "error", err)
	}

	fmt.Fprintf(out, "%s model is ready.\n", d.Name)
	return nil
}
