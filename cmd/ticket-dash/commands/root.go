package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ticket-dash/internal/config"
	"ticket-dash/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// app is the state shared by the commands of one invocation.
type app struct {
	verbose bool
	cfg     *config.AppConfig
	gen     generateFlags
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ticket-dash [flags] <export.csv>",
		Short: "Turn a Jira or ServiceNow CSV export into a ticket dashboard",
		Long: `ticket-dash reads a ticket CSV export from Jira or ServiceNow, detects its dialect,
normalizes the columns and renders workload, ageing, staleness, SLA and estimation metrics
as an HTML dashboard, a Markdown report or JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Init(a.verbose); err != nil {
				log.Warn().Err(err).Msg("File logging disabled")
			}
			log.Logger = log.With().Str("run", uuid.NewString()).Logger()

			var err error
			a.cfg, err = config.Load()
			if err != nil {
				return err
			}

			log.Debug().
				Str("version", Version).
				Str("commit", Commit).
				Str("buildDate", BuildDate).
				Str("command", cmd.Name()).
				Msg("ticket-dash starting")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd, args[0])
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	a.gen.register(rootCmd)

	rootCmd.AddCommand(newSchemaCmd(), newServeCmd(a))
	return rootCmd
}

// Execute runs the command line until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
