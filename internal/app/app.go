// Package app wires the card store, scripts and rule engine the commands
// share.
package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/peterkuimelis/ygoenv/internal/carddb"
	"github.com/peterkuimelis/ygoenv/internal/config"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/deck"
	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

// App holds the process-wide, read-only state every environment shares.
type App struct {
	Config  config.Config
	Store   *carddb.Store
	Scripts *carddb.Scripts
	Encoder *obs.Encoder
	Logger  zerolog.Logger

	engine core.Engine
	envs   atomic.Uint64
}

// Open loads the code list, decks and every card they reference.
func Open(ctx context.Context, cfg config.Config, engine core.Engine, logger zerolog.Logger) (*App, error) {
	codes, err := carddb.ReadCodeList(cfg.CodeList)
	if err != nil {
		return nil, err
	}
	decks, err := deck.Load(cfg.Decks)
	if err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	db, err := carddb.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	store, err := carddb.Load(ctx, db, codes, decks)
	if err != nil {
		return nil, err
	}
	return New(cfg, store, engine, logger)
}

// New builds an App around an already loaded store.
func New(cfg config.Config, store *carddb.Store, engine core.Engine, logger zerolog.Logger) (*App, error) {
	enc, err := obs.NewEncoder(cfg.Shape())
	if err != nil {
		return nil, err
	}
	for _, name := range []string{cfg.Deck1, cfg.Deck2} {
		if _, ok := store.Deck(name); !ok {
			return nil, fmt.Errorf("deck %q not loaded (have %v)", name, store.DeckNames())
		}
	}
	logger.Info().Int("cards", store.Len()).Strs("decks", store.DeckNames()).Msg("card store loaded")
	return &App{
		Config:  cfg,
		Store:   store,
		Scripts: carddb.NewScripts(cfg.ScriptDirs, cfg.CheckScripts, logger),
		Encoder: enc.WithLogger(logger),
		Logger:  logger,
		engine:  engine,
	}, nil
}

// EnvConfig returns the duel settings for the next environment. Each
// environment gets its own seed derived from the configured one.
func (a *App) EnvConfig(narrator log.EventLogger) (duel.Config, error) {
	modes, err := a.Config.PlayModes()
	if err != nil {
		return duel.Config{}, err
	}
	n := a.envs.Add(1)
	var seed uint64
	if a.Config.Seed != 0 {
		seed = a.Config.Seed + n - 1
	}
	return duel.Config{
		Deck1:           a.Config.Deck1,
		Deck2:           a.Config.Deck2,
		Player:          a.Config.Player,
		PlayModes:       modes,
		MaxSteps:        a.Config.MaxSteps,
		NHistoryActions: a.Config.NHistoryActions,
		Seed:            seed,
		Narrator:        narrator,
		Logger:          a.Logger,
		Scripts:         a.Scripts.Read,
	}, nil
}

// NewEnv builds an environment from cfg.
func (a *App) NewEnv(cfg duel.Config) (*duel.Env, error) {
	return duel.NewEnv(a.engine, a.Store, cfg)
}

// EnvFactory adapts the App to the server's per-session constructor.
func (a *App) EnvFactory(narrator log.EventLogger) (*duel.Env, error) {
	cfg, err := a.EnvConfig(narrator)
	if err != nil {
		return nil, err
	}
	return a.NewEnv(cfg)
}
