// Root command for the vault CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vault/internal/paths"
)

// version is the CLI version string, overridable at link time.
var version = "0.1.0"

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagVerbose   bool
)

// configDataDir holds the data_dir value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configDataDir string

var rootCmd = &cobra.Command{
	Use:     "vault",
	Short:   "Vault is a local-first entry store",
	Long: `Vault stores notes, sparks, actions, loops, paths, sagas, and
categories in a local SQLite database and maintains the links between them.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.vault-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(sparkCmd)
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(loopCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(sagaCmd)
	rootCmd.AddCommand(categoryCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the vault store",
	Long:  `Init creates the data directory and the database schema if missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()
		cmd.Println("Vault initialized")
		return nil
	},
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > VAULT_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > VAULT_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
