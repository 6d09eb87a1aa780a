package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ambient/assets"
	"ambient/config"
	"ambient/logger"
	"ambient/playback"
	"ambient/player"
	"ambient/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ambient",
	Short: "A terminal player for ambient focus sounds",
	Long: `Ambient plays one looping background sound at a time to help you focus.

Pick a sound from the grid to start it, pick it again to stop it, and use the
transport controls to move between sounds, toggle looping, change the volume
or seek within the current sound.`,
	RunE:         runPlayer,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("sounds-dir", "./sounds", "directory holding the sound files")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file while the player runs")

	// Local flags for the player
	rootCmd.Flags().Float64("volume", player.DefaultVolume, "initial volume between 0 and 1")
	rootCmd.Flags().Bool("no-loop", false, "start with looping turned off")
	rootCmd.Flags().String("sound", "", "id of a sound to start playing right away")
	rootCmd.Flags().Bool("no-mouse", false, "disable mouse support")

	// Bind flags to viper
	viper.BindPFlag("player.sounds_dir", rootCmd.PersistentFlags().Lookup("sounds-dir"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("player.volume", rootCmd.Flags().Lookup("volume"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if verbose {
		viper.Set("logging.level", "debug")
	}
}

// loadConfig loads and validates the configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// runPlayer starts the player UI
func runPlayer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if noLoop, _ := cmd.Flags().GetBool("no-loop"); noLoop {
		cfg.Player.Loop = false
	}

	// The UI owns the terminal, so logs go to a file or nowhere
	sink, err := logger.Open(cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer sink.Close()

	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, sink); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	var opts []ui.Option
	opts = append(opts, ui.WithVolumeStep(cfg.Player.VolumeStep), ui.WithTips(cfg.Player.ShowTips))
	if id, _ := cmd.Flags().GetString("sound"); id != "" {
		index, ok := cat.Index(id)
		if !ok {
			return fmt.Errorf("unknown sound %q", id)
		}
		opts = append(opts, ui.WithStartSound(index))
	}

	rate := beep.SampleRate(cfg.Audio.SampleRate)
	loader := assets.NewLoader(os.DirFS(cfg.Player.SoundsDir), cfg.Audio.CacheTTL, assets.WithSampleRate(rate))
	go preload(loader, cat.Sources())

	// Time updates are sent to the program and applied in its Update loop
	var prog *tea.Program
	dispatch := ui.Dispatcher(func(msg tea.Msg) {
		if prog != nil {
			prog.Send(msg)
		}
	})

	backend, err := playback.NewSpeaker(playback.SpeakerConfig{
		SampleRate: rate,
		BufferSize: cfg.Audio.Buffer,
		Tick:       cfg.Audio.Tick,
	}, loader, playback.WithDispatcher(dispatch), playback.WithLogger(logger.WithComponent("speaker")))
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Warn("Failed to close speaker", slog.Any("error", err))
		}
	}()

	p := player.New(cat, backend,
		player.WithVolume(cfg.Player.Volume),
		player.WithLooping(cfg.Player.Loop),
		player.WithLogger(logger.WithComponent("player")))
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if noMouse, _ := cmd.Flags().GetBool("no-mouse"); !noMouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	prog = tea.NewProgram(ui.New(p, opts...), progOpts...)

	slog.Info("Starting player",
		slog.Int("sounds", cat.Len()),
		slog.String("sounds_dir", cfg.Player.SoundsDir))

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("player failed: %w", err)
	}

	slog.Info("Player stopped")
	return nil
}

// preload decodes the catalog in the background so selecting a sound starts quickly
func preload(loader *assets.Loader, sources []string) {
	if err := loader.Preload(sources...); err != nil {
		slog.Warn("Some sounds could not be preloaded", slog.Any("error", err))
	}
	slog.Debug("Preloaded sounds", slog.Int("cached", loader.Cached()), slog.Int("sounds", len(sources)))
}

// setupConsoleLogging configures logging for the non-interactive commands
func setupConsoleLogging(w io.Writer) error {
	level := viper.GetString("logging.level")
	if level == "" {
		level = "info"
	}
	format := viper.GetString("logging.format")
	if format == "" {
		format = "text"
	}
	if err := logger.Setup(level, format, w); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}
