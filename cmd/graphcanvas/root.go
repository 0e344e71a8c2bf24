package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	gc "github.com/phanxgames/graphcanvas"
)

var version = "0.1.0"

var (
	configPath string
	keymapPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "graphcanvas",
	Short:         "graphcanvas: node graph canvas tools",
	Long:          brand.Sprint("graphcanvas") + ": open, inspect and lay out node graphs",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.LogLevel()
		if logLevel != "" {
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
		}
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		gc.SetLogger(slog.New(h).With("component", "graphcanvas"))
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("graphcanvas {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVarP(&keymapPath, "keymap", "k", "", "keymap file, overrides the config keymap")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		runCmd(),
		keysCmd(),
		layoutCmd(),
	)
}

// loadConfig returns the config named by --config and --keymap, or the
// defaults.
func loadConfig() (gc.Config, error) {
	cfg := gc.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = gc.LoadConfig(configPath); err != nil {
			return gc.Config{}, err
		}
	}
	if keymapPath != "" {
		cfg.Input.KeymapFile = keymapPath
	}
	return cfg, nil
}

func fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	bad.Fprintf(os.Stderr, "  %s %v\n", "✗", err)
	return err
}
