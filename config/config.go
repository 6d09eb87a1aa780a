package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ambient/catalog"
)

// Config holds all configuration for the application
type Config struct {
	// Player defaults
	Player PlayerConfig `mapstructure:"player"`

	// Audio output configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Sounds replaces the built-in catalog when set
	Sounds []SoundConfig `mapstructure:"sounds"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// PlayerConfig holds the initial player settings
type PlayerConfig struct {
	Volume     float64 `mapstructure:"volume"`
	Loop       bool    `mapstructure:"loop"`
	VolumeStep float64 `mapstructure:"volume_step"`
	SoundsDir  string  `mapstructure:"sounds_dir"`
	ShowTips   bool    `mapstructure:"show_tips"`
}

// AudioConfig holds speaker and decoding settings
type AudioConfig struct {
	SampleRate int           `mapstructure:"sample_rate"`
	Buffer     time.Duration `mapstructure:"buffer"`
	Tick       time.Duration `mapstructure:"tick"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// SoundConfig describes one catalog entry
type SoundConfig struct {
	ID     string `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Source string `mapstructure:"source"`
	Icon   string `mapstructure:"icon"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
	File   string `mapstructure:"file"`   // empty discards logs while the UI runs
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("player.volume", 0.5)
	v.SetDefault("player.loop", true)
	v.SetDefault("player.volume_step", 0.05)
	v.SetDefault("player.sounds_dir", "./sounds")
	v.SetDefault("player.show_tips", true)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.buffer", "100ms")
	v.SetDefault("audio.tick", "250ms")
	v.SetDefault("audio.cache_ttl", "30m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load reads configuration into a Config using v
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	// Read config file
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ambient")
		v.AddConfigPath("/etc/ambient")
	}

	// Allow environment variables
	v.SetEnvPrefix("AMBIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Info("Using config file", slog.String("file", v.ConfigFileUsed()))
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return &ConfigError{Field: "player.volume", Message: "must be between 0 and 1"}
	}
	if c.Player.VolumeStep <= 0 || c.Player.VolumeStep > 1 {
		return &ConfigError{Field: "player.volume_step", Message: "must be greater than 0 and at most 1"}
	}
	if c.Audio.SampleRate <= 0 {
		return &ConfigError{Field: "audio.sample_rate", Message: "must be positive"}
	}
	if c.Audio.Buffer <= 0 {
		return &ConfigError{Field: "audio.buffer", Message: "must be positive"}
	}
	if c.Audio.Tick <= 0 {
		return &ConfigError{Field: "audio.tick", Message: "must be positive"}
	}
	if len(c.Sounds) > 0 {
		if _, err := c.Catalog(); err != nil {
			return &ConfigError{Field: "sounds", Message: err.Error()}
		}
	}
	return nil
}

// Catalog builds the sound catalog: the configured sounds, or the built-in ones
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Sounds) == 0 {
		return catalog.Default(), nil
	}

	entries := make([]catalog.SoundEntry, len(c.Sounds))
	for i, s := range c.Sounds {
		entries[i] = catalog.SoundEntry{ID: s.ID, Name: s.Name, Source: s.Source, Icon: s.Icon}
	}

	cat, err := catalog.New(entries...)
	if err != nil {
		return nil, fmt.Errorf("invalid sounds: %w", err)
	}
	return cat, nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
