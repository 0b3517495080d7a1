package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saft/internal/snapshot"
	"github.com/cleared-dev/saft/internal/store"
)

func newDBCommand(g *globals) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "PostgreSQL storage operations",
	}
	dbCmd.AddCommand(newDBMigrateCommand(g), newDBLoadCommand(g))
	return dbCmd
}

func newDBMigrateCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			pool, err := store.NewPool(cmd.Context(), cfg.Storage.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.New(pool).Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
			return nil
		},
	}
}

func newDBLoadCommand(g *globals) *cobra.Command {
	var tenant, dataDir string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Copy a tenant's file data into the database, replacing what is there",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = cfg.Storage.DataDir
			}

			ctx := cmd.Context()
			snap, err := snapshot.NewDir(dataDir).Load(ctx, tenant)
			if err != nil {
				return err
			}

			pool, err := store.NewPool(ctx, cfg.Storage.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.New(pool).Import(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded tenant %s from %s: %d accounts, %d invoices\n",
				tenant, filepath.Clean(dataDir), len(snap.Accounts), len(snap.Invoices))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant ID")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "file data root (default storage.data_dir)")

	return cmd
}
