package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/zenplan/internal/config"
	"github.com/thebtf/zenplan/internal/ui"
	"github.com/thebtf/zenplan/internal/worker"
	"github.com/thebtf/zenplan/pkg/client"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local worker that serves presentation shells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.EnsureAll(); err != nil {
				log.Warn().Err(err).Msg("Failed to ensure config directory")
			}
			closer, err := addFileLog(os.Stderr, config.LogPath())
			if err != nil {
				log.Warn().Err(err).Str("path", config.LogPath()).Msg("File logging disabled")
			} else {
				defer closer.Close()
			}

			if port > 0 {
				a.cfg.WorkerPort = port
			}
			if client.IsWorkerRunning(a.cfg.WorkerPort) {
				return fmt.Errorf("a worker is already running on port %d", a.cfg.WorkerPort)
			}

			svc, err := worker.NewService(a.cfg, a.version)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return svc.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, fmt.Sprintf("Listen port (default %d)", config.DefaultWorkerPort))
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Ask the running worker for its health and counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port <= 0 {
				port = client.GetWorkerPort()
			}
			c := client.New(port)
			out := cmd.OutOrStdout()

			ctx, cancel := context.WithTimeout(cmd.Context(), client.DefaultTimeout)
			defer cancel()

			fmt.Fprintln(out, ui.Heading(ui.IconWorker, "Worker"))
			h, err := c.Health(ctx)
			if err != nil {
				fmt.Fprintln(out, ui.LabelValue("Status", ui.Bad.Render("offline")))
				fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("nothing answers on 127.0.0.1:%d, start one with `zenplan serve`", port)))
				return nil
			}
			fmt.Fprintln(out, ui.LabelValue("Status", ui.Good.Render(h.Status)))
			fmt.Fprintln(out, ui.LabelValue("Version", h.Version))
			fmt.Fprintln(out, ui.LabelValue("Data", h.DataDir))

			s, err := c.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.LabelValue("Uptime", s.Uptime))
			fmt.Fprintln(out, ui.LabelValue("Requests", s.Requests))
			fmt.Fprintln(out, ui.LabelValue("Saves", fmt.Sprintf("%d notes, %d record files", s.NotesSaved, s.RecordsSaved)))
			fmt.Fprintln(out, ui.LabelValue("Scans", fmt.Sprintf("%d (%d failed, last %.1f ms)", s.Scans, s.ScanErrors, s.LastScanMillis)))
			fmt.Fprintln(out, ui.LabelValue("Live clients", s.SSEClients))
			if h.DataDir != a.cfg.DataDir {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" worker data directory differs from "+a.cfg.DataDir))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Worker port (default: configured port)")
	return cmd
}
