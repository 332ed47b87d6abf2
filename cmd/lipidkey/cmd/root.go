// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/internal/config"
	"github.com/ChrisMcGann/LipidKey/internal/logging"
	"github.com/ChrisMcGann/LipidKey/pkg/compose"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
	"github.com/ChrisMcGann/LipidKey/pkg/preview"
	"github.com/ChrisMcGann/LipidKey/pkg/registry"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
)

// app is the state shared by every command once the root pre-run succeeds.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Registry
	resolver *compose.Resolver
}

var env *app

var rootCmd = &cobra.Command{
	Use:   "lipidkey",
	Short: "LipidKey - Lipid structure preview and spectrum synthesis",
	Long: `LipidKey resolves a representative molecular species for a lipid class and
adduct, predicts its fragment spectrum and synthesizes a resolution-broadened
profile for comparison against instrument data.

Classes, adducts and fragment rules come from a YAML registry; the built-in
registry covers PC, LPC, PE, ether/plasmalogen variants, DG, TG, Cer and SM.`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to lipidkey.toml (default: ./lipidkey.toml or ~/.config/lipidkey/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: auto, console, json (overrides config)")

	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads configuration, the adduct table and the class registry
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["skipSetup"] == "true" {
		return nil
	}

	cfg, _, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger, err := logging.NewFromConfig(cfg, os.Stderr)
	if err != nil {
		return err
	}

	table := core.DefaultAdductTable()
	if cfg.Registry.AdductCSV != "" {
		f, err := os.Open(cfg.Registry.AdductCSV)
		if err != nil {
			return fmt.Errorf("failed to open adduct CSV: %w", err)
		}
		err = table.LoadFromCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to load adduct CSV: %w", err)
		}
		logger.Info("loaded adduct table", "path", cfg.Registry.AdductCSV, "adducts", len(table.Names()))
	}

	var reg *registry.Registry
	if cfg.Registry.Path != "" {
		reg, err = registry.LoadFile(cfg.Registry.Path, table)
	} else {
		reg, err = registry.Default(table)
	}
	if err != nil {
		return err
	}

	pools, err := cfg.Pools()
	if err != nil {
		return err
	}

	env = &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		resolver: compose.NewResolver(pools, logger),
	}
	logger.Debug("registry ready", "classes", len(reg.Classes))
	return nil
}

// newSession opens a preview session over the loaded registry
func newSession(isotope bool) *preview.Session {
	return preview.NewSession(env.registry, env.resolver, preview.Options{IsotopeMode: isotope}, env.logger)
}
