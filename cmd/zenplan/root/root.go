package root

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/zenplan/internal/activity"
	"github.com/thebtf/zenplan/internal/config"
	"github.com/thebtf/zenplan/internal/storage"
	"github.com/thebtf/zenplan/internal/ui"
)

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	version string
	debug   bool
	dataDir string
	cfg     *config.Config
	now     func() time.Time
}

func newRootCmd(version string) (*cobra.Command, *app) {
	a := &app{version: version, now: time.Now}

	cmd := &cobra.Command{
		Use:           "zenplan",
		Short:         "ZenPlan: local-first study tracker",
		Long:          "ZenPlan keeps per-day notes and solved-task records in plain files and shows your practice activity.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Data directory (default: ~/Documents/ZenPlan)")

	cmd.AddCommand(
		newNoteCmd(a),
		newRecordsCmd(a),
		newActivityCmd(a),
		newStatsCmd(a),
		newHeatmapCmd(a),
		newSubjectsCmd(a),
		newServeCmd(a),
		newStatusCmd(a),
	)
	return cmd, a
}

// Execute runs the CLI and exits non-zero on error.
func Execute(version string) {
	cmd, _ := newRootCmd(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func (a *app) init() error {
	cfg, err := config.Load()
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg

	setupLogging(os.Stderr, cfg.LogLevel, a.debug)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring settings file, using defaults")
	}
	return nil
}

// gateway resolves the data directory and returns a gateway over it.
func (a *app) gateway() (*storage.Gateway, error) {
	g := storage.NewGateway(a.cfg.DataDir)
	if _, err := g.ResolveDataDirectory(); err != nil {
		return nil, err
	}
	return g, nil
}

func (a *app) today() string {
	return a.now().Format(activity.ISODate)
}

// dateArg returns args[i], or today when it is absent.
func (a *app) dateArg(args []string, i int) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return a.today()
}
