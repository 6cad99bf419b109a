package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"construct-hq/loom/pkg/cli"
	"construct-hq/loom/pkg/store"
)

func newStoreCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the record store",
	}
	cmd.AddCommand(newStoreImportCmd(opts))
	return cmd
}

func newStoreImportCmd(opts *rootOptions) *cobra.Command {
	var (
		dbPath string
		driver string
	)

	cmd := &cobra.Command{
		Use:   "import <records.yaml|records.toml>",
		Short: "Copy a records file into the SQLite store",
		Long: `Read characters, connections, settings and defaults from a YAML or TOML
records file and upsert them into the SQLite database configured under
store.sqlite. Records without an id get a generated one.

Examples:
  loom store import records.yaml
  loom store import records.toml --db data/loom.db --driver sqlite3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sqliteCfg := opts.cfg.Store.SQLite
			if dbPath != "" {
				sqliteCfg.Path = dbPath
			}
			if driver != "" {
				sqliteCfg.Driver = driver
			}

			records, err := store.ReadRecordsFile(args[0])
			if err != nil {
				return cli.NewCommandError("store import", err)
			}

			db, err := store.NewSQLiteStore(store.SQLiteConfig{
				Path:        sqliteCfg.Path,
				Driver:      sqliteCfg.Driver,
				BusyTimeout: sqliteCfg.BusyTimeout,
			}, opts.logger)
			if err != nil {
				return cli.NewConfigError("store.sqlite", err)
			}
			defer db.Close()

			n, err := db.Import(cmd.Context(), records)
			if err != nil {
				return cli.NewCommandError("store import", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records into %s\n", n, sqliteCfg.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "override store.sqlite.path")
	cmd.Flags().StringVar(&driver, "driver", "", "override store.sqlite.driver (sqlite, sqlite3)")
	return cmd
}
