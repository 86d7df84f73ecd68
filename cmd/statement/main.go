package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/Veraticus/statement-press/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "statement",
		Short: "🧾 Paginated account statements",
		Long: `statement: lays out account ledgers as paginated, print-ready statements.

Ledgers come from a JSON payload, an OFX/QFX export, or a Plaid-linked
account. Each statement product has its own layout profile; pages are
rendered to PDF, previewed in the terminal, or exported to Google Sheets.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/statement/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(importOFXCmd())
	rootCmd.AddCommand(syncPlaidCmd())
	rootCmd.AddCommand(syncSimpleFINCmd())
	rootCmd.AddCommand(exportSheetsCmd())
	rootCmd.AddCommand(authSheetsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(profilesCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(describeError(err))) //nolint:forbidigo // User-facing output
		os.Exit(1)
	}
}

// describeError turns a command error into the line shown to the user.
func describeError(err error) string {
	var userErr *common.UserError
	msg := err.Error()
	if errors.As(err, &userErr) {
		msg = userErr.Error()
	}
	if common.IsConfigError(err) {
		msg += " (check the profiles section of your config file)"
	}
	return msg
}

func initConfig(_ *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/statement", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	// Environment variables, e.g. STATEMENT_PLAID_CLIENT_ID
	viper.SetEnvPrefix("STATEMENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	return setupLogging()
}

func setDefaults() {
	viper.SetDefault("database.path", "$HOME/.local/share/statement/statement.db")
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("server.addr", "localhost:8090")
	viper.SetDefault("server.timeout", "60s")
	viper.SetDefault("server.max_body_bytes", 10<<20)
	viper.SetDefault("server.cert_dir", "$HOME/.config/statement/certs")
	viper.SetDefault("plaid.environment", "sandbox")
	viper.SetDefault("simplefin.state_file", "$HOME/.local/share/statement/simplefin.json")
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if err := common.SetupLogger(level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "statement %s\n", version) //nolint:forbidigo // User-facing output
		},
	}
}
