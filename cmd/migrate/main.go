package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rrens/workspace-insights/internal/config"
	"github.com/Rrens/workspace-insights/internal/repository/sqlstore"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the workspace-insights database schema",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *sqlstore.Store) error {
				if err := store.Migrate(); err != nil {
					return err
				}
				return printVersion(store)
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			return withStore(cmd.Context(), func(store *sqlstore.Store) error {
				if err := store.MigrateDown(steps); err != nil {
					return err
				}
				return printVersion(store)
			})
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), printVersion)
		},
	}

	rootCmd.AddCommand(upCmd, downCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withStore(ctx context.Context, fn func(*sqlstore.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

func printVersion(store *sqlstore.Store) error {
	version, dirty, err := store.Version()
	if err != nil {
		return err
	}

	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Printf("schema version %d (%s, %s)\n", version, store.Dialect(), state)
	return nil
}
