package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ygoenv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, obs.DefaultShape(), cfg.Shape())

	modes, err := cfg.PlayModes()
	require.NoError(t, err)
	assert.Equal(t, []duel.PlayMode{duel.ModeGreedy}, modes)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
db_path: data/cards.cdb
script_dirs: [script, expansions/script]
decks: decks.yaml
deck1: Goat
deck2: Chaos
player: 1
play_mode: self+random
max_cards: 80
max_steps: 500
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/cards.cdb", cfg.DBPath)
	assert.Equal(t, []string{"script", "expansions/script"}, cfg.ScriptDirs)
	assert.Equal(t, "Goat", cfg.Deck1)
	assert.Equal(t, 1, cfg.Player)
	assert.Equal(t, 500, cfg.MaxSteps)
	assert.Equal(t, obs.Shape{MaxCards: 80, MaxOptions: 24, NHistoryActions: 16}, cfg.Shape())
	// Unset keys keep their defaults.
	assert.Equal(t, "code_list.txt", cfg.CodeList)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "deck1: Goat\nplayer: 1\n")
	t.Setenv("YGOENV_DECK1", "Chaos")
	t.Setenv("YGOENV_PLAYER", "0")
	t.Setenv("YGOENV_SCRIPT_DIRS", "a:b")
	t.Setenv("YGOENV_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Chaos", cfg.Deck1)
	assert.Equal(t, 0, cfg.Player)
	assert.Equal(t, []string{"a", "b"}, cfg.ScriptDirs)
	assert.True(t, cfg.Verbose)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"player out of range", func(c *Config) { c.Player = 2 }},
		{"human with bots", func(c *Config) { c.PlayMode = "human+random" }},
		{"unknown mode", func(c *Config) { c.PlayMode = "mcts" }},
		{"zero shape", func(c *Config) { c.MaxOptions = 0 }},
		{"negative max steps", func(c *Config) { c.MaxSteps = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "player: [1\n"))
	assert.Error(t, err)

	t.Setenv("YGOENV_MAX_CARDS", "many")
	_, err = Load("")
	assert.Error(t, err)
}
