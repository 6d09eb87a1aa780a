package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"ambient/assets"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// soundsCmd lists the catalog
var soundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List the available sounds",
	Long:  "List every sound in the catalog and whether its file can be played.",
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

		loader := assets.NewLoader(os.DirFS(cfg.Player.SoundsDir), cfg.Audio.CacheTTL)

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("#", "ID", "NAME", "SOURCE", "STATUS")
		for i, e := range cat.Entries() {
			t.Row(strconv.Itoa(i+1), e.ID, e.Name, e.Source, availability(loader.Available(e.Source)))
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(soundsCmd)
}

func availability(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, assets.ErrNotFound):
		return "missing"
	case errors.Is(err, assets.ErrUnsupportedFormat):
		return "unsupported"
	default:
		return "error"
	}
}
