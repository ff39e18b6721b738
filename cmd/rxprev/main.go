package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rxprev/internal"
	"rxprev/internal/config"
	"rxprev/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rxprev",
		Short:         "Naive vs treated mutation prevalence reports for HIV-1 PR, RT and IN",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("database-url", "", "store runs in this database (postgres:// or sqlite3://), overrides DATABASE_URL")
	rootCmd.PersistentFlags().String("log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE, overrides LOG_LEVEL")

	rootCmd.AddCommand(
		newTableCmd(),
		newServeCmd(),
		newRunsCmd(),
	)
	return rootCmd
}

// setup loads configuration, applies the persistent flag overrides and
// builds the container with its run store.
func setup(cmd *cobra.Command, apply func(cfg *config.Config) error) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if url, _ := cmd.Flags().GetString("database-url"); url != "" {
		cfg.Database.URL = url
	}
	if name, _ := cmd.Flags().GetString("log-level"); name != "" {
		level, ok := internal.ParseLogLevel(name)
		if !ok {
			return nil, fmt.Errorf("invalid --log-level %q", name)
		}
		cfg.LogLevel = level
	}
	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := container.New(cfg, internal.NewLogger(cfg.LogLevel))
	if err != nil {
		return nil, err
	}
	if err := c.InitWithDatabase(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}
