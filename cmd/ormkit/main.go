package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/koba/ormkit/internal/database"
	"github.com/koba/ormkit/internal/demo"
	"github.com/koba/ormkit/internal/generator"
	"github.com/koba/ormkit/internal/logging"
	"github.com/koba/ormkit/record"
)

var (
	configPath   string
	logLevel     string
	logFormat    string
	dialect      string
	databaseName string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ormkit",
	Short: "Record types mapped to SQL tables",
	Long: `Work with the demo record types: print the tables they map to, create
them in a database and run a save and find round trip.

Databases are read from the sconf file given with --config, or else from
the DB_TYPE, DB_NAME, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and
DB_SYNCHRONIZE environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the CREATE TABLE statements of the demo types",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create the missing tables of the demo types",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <table>",
	Short: "Print the live schema of a table as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Save a user and a post and read them back",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file commands",
}

var configDescribeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print an annotated example configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.DescribeConfigFile(cmd.OutOrStdout())
	},
}

var configTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Parse the configuration and print the databases it names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := loadConfigs()
		if err != nil {
			return err
		}
		for _, c := range configs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.Name, c.Type, c.Database)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "sconf file listing the databases (default: DB_* environment variables)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	schemaCmd.Flags().StringVar(&dialect, "dialect", "sqlite", "SQL dialect: mysql, postgres or sqlite")
	inspectCmd.Flags().StringVar(&databaseName, "database", "", "Configured database to inspect (default: the first one)")

	configCmd.AddCommand(configDescribeCmd)
	configCmd.AddCommand(configTestCmd)

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(configCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}
	record.SetLogger(logging.Init(os.Stderr, level, format))
	return nil
}

func loadConfigs() ([]database.Config, error) {
	if configPath != "" {
		return database.LoadConfigFile(configPath)
	}
	config, err := database.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return []database.Config{config}, nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	d, err := generator.ParseDialect(dialect)
	if err != nil {
		return err
	}
	tables, err := demo.Tables()
	if err != nil {
		return fmt.Errorf("failed to synthesize tables: %w", err)
	}

	ddl := generator.NewDDLGenerator(d)
	for _, table := range tables {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", ddl.CreateTable(table))
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	configs, err := loadConfigs()
	if err != nil {
		return err
	}
	for i := range configs {
		configs[i].Synchronize = true
	}

	ctx := cmd.Context()
	if err := record.Connect(ctx, configs...); err != nil {
		return err
	}
	defer record.Disconnect()

	if err := demo.Preload(ctx); err != nil {
		return fmt.Errorf("failed to synchronize tables: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tables synchronized")
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	configs, err := loadConfigs()
	if err != nil {
		return err
	}
	config := configs[0]
	if databaseName != "" {
		found := false
		for _, c := range configs {
			if c.Name == databaseName {
				config, found = c, true
				break
			}
		}
		if !found {
			return fmt.Errorf("database %s is not configured", databaseName)
		}
	}

	db, err := database.NewDatabase(config)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	ctx := cmd.Context()
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	table, err := db.GetTableSchema(ctx, args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

func runDemo(cmd *cobra.Command, args []string) error {
	configs, err := loadConfigs()
	if err != nil {
		return err
	}
	for i := range configs {
		configs[i].Synchronize = true
	}

	ctx := cmd.Context()
	if err := record.Connect(ctx, configs...); err != nil {
		return err
	}
	defer record.Disconnect()

	return demo.Run(ctx, slog.Default())
}
