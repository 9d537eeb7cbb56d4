package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hetulpatel/pairwatch/internal/logging"
	"github.com/hetulpatel/pairwatch/internal/storage/sqlite"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var path string
	root := &cobra.Command{
		Use:           "sqlite_admin",
		Short:         "Manage the pair verdict journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&path, "path", os.Getenv("SQLITE_PATH"), "SQLite file (defaults to SQLITE_PATH)")

	withStore := func(fn func(cmd *cobra.Command, store *sqlite.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			store, err := sqlite.Open(path)
			if err != nil {
				return fmt.Errorf("open sqlite: %w", err)
			}
			defer store.Close()
			return fn(cmd, store)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create the verdicts table",
		RunE: withStore(func(cmd *cobra.Command, store *sqlite.Store) error {
			if err := store.CreateTables(cmd.Context()); err != nil {
				return fmt.Errorf("create tables: %w", err)
			}
			logging.Infof("SQLite tables created at %s", store.Path())
			return nil
		}),
	})
	root.AddCommand(&cobra.Command{
		Use:   "drop",
		Short: "Drop the verdicts table",
		RunE: withStore(func(cmd *cobra.Command, store *sqlite.Store) error {
			if err := store.DropTables(cmd.Context()); err != nil {
				return fmt.Errorf("drop tables: %w", err)
			}
			logging.Infof("SQLite tables dropped at %s", store.Path())
			return nil
		}),
	})
	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every journaled verdict",
		RunE: withStore(func(cmd *cobra.Command, store *sqlite.Store) error {
			if err := store.ClearTables(cmd.Context()); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
			logging.Infof("SQLite tables cleared at %s", store.Path())
			return nil
		}),
	})

	var (
		chain string
		limit int
	)
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Print the latest verdicts for a chain as JSON",
		RunE: withStore(func(cmd *cobra.Command, store *sqlite.Store) error {
			events, err := store.Recent(cmd.Context(), chain, limit)
			if err != nil {
				return fmt.Errorf("query verdicts: %w", err)
			}
			b, _ := json.MarshalIndent(events, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}),
	}
	recent.Flags().StringVar(&chain, "chain", "ethereum", "chain to list")
	recent.Flags().IntVar(&limit, "limit", 20, "maximum verdicts to print")
	root.AddCommand(recent)

	return root
}
