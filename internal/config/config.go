// Package config loads the environment settings shared by the commands.
//
// Settings come from an optional YAML file and are then overridden by
// YGOENV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

// Config holds every setting of the environment and its commands.
type Config struct {
	DBPath       string   `yaml:"db_path" env:"YGOENV_DB_PATH"`
	CodeList     string   `yaml:"code_list" env:"YGOENV_CODE_LIST"`
	ScriptDirs   []string `yaml:"script_dirs" env:"YGOENV_SCRIPT_DIRS" envSeparator:":"`
	CheckScripts bool     `yaml:"check_scripts" env:"YGOENV_CHECK_SCRIPTS"`
	// Decks is a directory of .ydk files, a single .ydk file or a YAML
	// manifest.
	Decks string `yaml:"decks" env:"YGOENV_DECKS"`

	Deck1    string `yaml:"deck1" env:"YGOENV_DECK1"`
	Deck2    string `yaml:"deck2" env:"YGOENV_DECK2"`
	Player   int    `yaml:"player" env:"YGOENV_PLAYER"`
	PlayMode string `yaml:"play_mode" env:"YGOENV_PLAY_MODE"`
	Verbose  bool   `yaml:"verbose" env:"YGOENV_VERBOSE"`
	Seed     uint64 `yaml:"seed" env:"YGOENV_SEED"`
	MaxSteps int    `yaml:"max_steps" env:"YGOENV_MAX_STEPS"`

	MaxOptions      int `yaml:"max_options" env:"YGOENV_MAX_OPTIONS"`
	MaxCards        int `yaml:"max_cards" env:"YGOENV_MAX_CARDS"`
	NHistoryActions int `yaml:"n_history_actions" env:"YGOENV_N_HISTORY_ACTIONS"`

	Listen    string `yaml:"listen" env:"YGOENV_LISTEN"`
	LogLevel  string `yaml:"log_level" env:"YGOENV_LOG_LEVEL"`
	LogPretty bool   `yaml:"log_pretty" env:"YGOENV_LOG_PRETTY"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	shape := obs.DefaultShape()
	return Config{
		DBPath:          "cards.cdb",
		CodeList:        "code_list.txt",
		ScriptDirs:      []string{"script"},
		Decks:           "decks",
		Player:          -1,
		PlayMode:        string(duel.ModeGreedy),
		MaxOptions:      shape.MaxOptions,
		MaxCards:        shape.MaxCards,
		NHistoryActions: shape.NHistoryActions,
		Listen:          ":9000",
		LogLevel:        "info",
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Player < -1 || c.Player > 1 {
		return fmt.Errorf("player must be -1, 0 or 1, got %d", c.Player)
	}
	if _, err := c.PlayModes(); err != nil {
		return err
	}
	if c.MaxOptions <= 0 || c.MaxCards <= 0 || c.NHistoryActions <= 0 {
		return errors.New("max_options, max_cards and n_history_actions must be positive")
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}

// PlayModes parses PlayMode.
func (c Config) PlayModes() ([]duel.PlayMode, error) {
	return duel.ParsePlayModes(c.PlayMode)
}

// Shape is the observation shape.
func (c Config) Shape() obs.Shape {
	return obs.Shape{MaxCards: c.MaxCards, MaxOptions: c.MaxOptions, NHistoryActions: c.NHistoryActions}
}
