package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khaledsukkar2/swiftcrud/internal/cli/ui"
	"github.com/khaledsukkar2/swiftcrud/internal/config"
)

const createEmployeesSQLite = `CREATE TABLE IF NOT EXISTS employees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	bio TEXT NOT NULL DEFAULT ''
)`

const createEmployeesPostgres = `CREATE TABLE IF NOT EXISTS employees (
	id SERIAL PRIMARY KEY,
	first_name VARCHAR(150) NOT NULL,
	last_name VARCHAR(150) NOT NULL,
	bio TEXT NOT NULL DEFAULT ''
)`

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  "Create the tables for the configured resources if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open(cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		schema := createEmployeesSQLite
		if cfg.Database.Driver == "postgres" {
			schema = createEmployeesPostgres
		}

		if _, err := db.Exec(schema); err != nil {
			ui.Error(os.Stderr, "migration failed: %v", err)
			return err
		}

		ui.Success(os.Stdout, "employees table is up to date (%s)", cfg.Database.Driver)
		return nil
	},
}
