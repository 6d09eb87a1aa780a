package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Commands for managing and validating ambient configuration.",
}

// configValidateCmd validates the current configuration
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the current configuration file and environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupConsoleLogging(cmd.ErrOrStderr()); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Configuration validation failed", slog.Any("error", err))
			return err
		}

		slog.Debug("Configuration is valid", slog.Int("sounds", len(cfg.Sounds)))
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Configuration is valid")
		return nil
	},
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current configuration values from file and environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupConsoleLogging(cmd.ErrOrStderr()); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cat, err := cfg.Catalog()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Current Configuration:")
		fmt.Fprintf(out, "  Player:\n")
		fmt.Fprintf(out, "    Volume: %.2f\n", cfg.Player.Volume)
		fmt.Fprintf(out, "    Loop: %t\n", cfg.Player.Loop)
		fmt.Fprintf(out, "    Volume step: %.2f\n", cfg.Player.VolumeStep)
		fmt.Fprintf(out, "    Sounds dir: %s\n", cfg.Player.SoundsDir)
		fmt.Fprintf(out, "    Show tips: %t\n", cfg.Player.ShowTips)
		fmt.Fprintf(out, "  Audio:\n")
		fmt.Fprintf(out, "    Sample rate: %d\n", cfg.Audio.SampleRate)
		fmt.Fprintf(out, "    Buffer: %s\n", cfg.Audio.Buffer)
		fmt.Fprintf(out, "    Tick: %s\n", cfg.Audio.Tick)
		fmt.Fprintf(out, "    Cache TTL: %s\n", cfg.Audio.CacheTTL)
		fmt.Fprintf(out, "  Sounds: %d\n", cat.Len())
		fmt.Fprintf(out, "  Logging:\n")
		fmt.Fprintf(out, "    Level: %s\n", cfg.Logging.Level)
		fmt.Fprintf(out, "    Format: %s\n", cfg.Logging.Format)
		fmt.Fprintf(out, "    File: %s\n", displayPath(cfg.Logging.File))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}

// displayPath shows an unset path as "-"
func displayPath(p string) string {
	if p == "" {
		return "-"
	}
	return p
}
