package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/mediation/internal/bootstrap"
	"github.com/railzwaylabs/mediation/internal/calldetail"
	"github.com/railzwaylabs/mediation/internal/calltype"
	"github.com/railzwaylabs/mediation/internal/clock"
	"github.com/railzwaylabs/mediation/internal/config"
	"github.com/railzwaylabs/mediation/internal/ipcg"
	"github.com/railzwaylabs/mediation/internal/migration"
	"github.com/railzwaylabs/mediation/internal/observability"
	"github.com/railzwaylabs/mediation/internal/poller"
	"github.com/railzwaylabs/mediation/internal/redis"
	"github.com/railzwaylabs/mediation/internal/server"
	"github.com/railzwaylabs/mediation/internal/subscriber"
	"github.com/railzwaylabs/mediation/internal/tax"
	"github.com/railzwaylabs/mediation/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "mediation",
		Short:   "IPCG call detail mediation",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newPollCmd(), newProcessCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(baseModules(), server.Module).Run()
			return nil
		},
	}
}

func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Watch the IPCG inbox and mediate ER files",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(baseModules(), poller.RunModule).Run()
			return nil
		},
	}
}

func newProcessCmd() *cobra.Command {
	var postedAt string
	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Mediate the given ER files once and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if postedAt != "" {
				t, err := time.Parse(time.RFC3339, postedAt)
				if err != nil {
					return fmt.Errorf("invalid --posted-at: %w", err)
				}
				ctx = clock.WithProcessingTime(ctx, t)
			}
			return runProcess(ctx, cmd, args)
		},
	}
	cmd.Flags().StringVar(&postedAt, "posted-at", "", "RFC3339 posting time to stamp instead of now, for replays")
	return cmd
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then serve the API and watch the inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			fx.New(baseModules(), server.Module, poller.RunModule).Run()
			return nil
		},
	}
}

// baseModules is everything needed to build and store call details behind an
// active schema.
func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		bootstrap.Module,
		fx.Invoke(bootstrap.EnforceSchemaGate),

		subscriber.Module,
		calltype.Module,
		tax.Module,
		ipcg.Module,
		calldetail.Module,
		poller.Module,
	)
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runProcess(ctx context.Context, cmd *cobra.Command, files []string) error {
	var p *poller.Poller
	app := fx.New(baseModules(), fx.Populate(&p), fx.NopLogger)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() { _ = app.Stop(context.Background()) }()

	for _, file := range files {
		summary, err := p.ProcessFile(ctx, file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s run=%s lines=%d created=%d rejected=%d failed=%d\n",
			file, summary.RunID, summary.Lines, summary.Created, summary.Rejected, summary.Failed)
	}
	return nil
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
