package main

import (
	"fmt"
	"os"

	"onechart-be/internal/config"
	"onechart-be/internal/model"
	"onechart-be/pkg/database"
	"onechart-be/pkg/templates"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Schema and catalog maintenance for the OneChart backend",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runMigrate,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the built-in document templates",
	RunE:  runTemplates,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every SQL statement")
	rootCmd.AddCommand(templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, verbose)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	color.Yellow("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Red("Warn: pgcrypto: %v. Continuing...", err)
	}

	models := []interface{}{
		&model.Profile{},
		&model.Patient{},
		&model.Session{},
		&model.SessionNote{},
		&model.SessionTranscript{},
		&model.SessionContext{},
		&model.SessionTask{},
	}

	color.Yellow("Step 2: Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	color.Green("Success: database migration completed")
	return nil
}

func runTemplates(cmd *cobra.Command, args []string) error {
	for _, t := range templates.Defaults() {
		color.Cyan("%-28s", t.Id)
		fmt.Printf("  %s\n", t.Name)
		if verbose && t.Description != "" {
			fmt.Printf("  %s\n", t.Description)
		}
	}
	return nil
}
