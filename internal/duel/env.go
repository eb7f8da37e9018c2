package duel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peterkuimelis/ygoenv/internal/carddb"
	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

// PlayMode selects who plays the seat the agent does not control.
type PlayMode string

const (
	ModeHuman  PlayMode = "human"
	ModeSelf   PlayMode = "self"
	ModeRandom PlayMode = "random"
	ModeGreedy PlayMode = "greedy"
)

// ParsePlayModes parses a '+'-joined mode list such as "self+random". One
// mode is drawn per episode. Human play cannot be combined with anything.
func ParsePlayModes(s string) ([]PlayMode, error) {
	var modes []PlayMode
	for _, part := range strings.Split(s, "+") {
		m := PlayMode(strings.TrimSpace(part))
		switch m {
		case ModeHuman, ModeSelf, ModeRandom, ModeGreedy:
			modes = append(modes, m)
		default:
			return nil, fmt.Errorf("unknown play mode %q", part)
		}
	}
	if len(modes) > 1 {
		for _, m := range modes {
			if m == ModeHuman {
				return nil, fmt.Errorf("play mode %q: human cannot be combined", s)
			}
		}
	}
	return modes, nil
}

// Starting values passed to the engine for each player.
const (
	StartLP        = 8000
	StartHandCount = 5
	DrawCount      = 1
)

// duelLifecycle serializes duel creation and teardown across environments.
var duelLifecycle sync.Mutex

// Config configures an Env.
type Config struct {
	Deck1, Deck2    string // deck names in the store
	Player          int    // agent seat, -1 for a random seat per episode
	PlayModes       []PlayMode
	MaxSteps        int // 0 for no limit
	NHistoryActions int
	Seed            uint64

	Narrator log.EventLogger // non-nil turns on verbose mode
	Logger   zerolog.Logger
	Scripts  core.ScriptReader
	HumanIn  io.Reader
	HumanOut io.Writer
}

// Info is returned with every step.
type Info struct {
	NumOptions int
	ToPlay     uint8
	IsSelfplay bool
	WinReason  uint8
	Options    []string
}

// StepResult is the outcome of Reset or Step.
type StepResult struct {
	Reward float32
	Done   bool
	Info   Info
}

// Env runs duels one episode at a time. It is not safe for concurrent use.
type Env struct {
	cfg    Config
	engine core.Engine
	store  *carddb.Store
	logger zerolog.Logger
	rng    *rand.Rand

	h        *Handler
	handle   core.Duel
	buf      []byte
	res      uint32
	err      error
	done     bool
	steps    int
	episode  uuid.UUID
	mode     PlayMode
	aiPlayer uint8
	mover    uint8
	players  [2]Player
	history  [2]*History
}

// NewEnv installs the store and script reader on the engine and returns an
// environment ready for Reset.
func NewEnv(engine core.Engine, store *carddb.Store, cfg Config) (*Env, error) {
	for _, name := range []string{cfg.Deck1, cfg.Deck2} {
		if _, ok := store.Deck(name); !ok {
			return nil, fmt.Errorf("deck %q not loaded", name)
		}
	}
	if cfg.Player < -1 || cfg.Player > 1 {
		return nil, fmt.Errorf("player must be -1, 0 or 1, got %d", cfg.Player)
	}
	if len(cfg.PlayModes) == 0 {
		cfg.PlayModes = []PlayMode{ModeGreedy}
	}
	if cfg.NHistoryActions <= 0 {
		cfg.NHistoryActions = 16
	}
	engine.SetCardReader(store.CardData)
	if cfg.Scripts != nil {
		engine.SetScriptReader(cfg.Scripts)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Env{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		logger:  cfg.Logger,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		buf:     make([]byte, core.MessageBufferSize),
		done:    true,
		history: [2]*History{NewHistory(cfg.NHistoryActions), NewHistory(cfg.NHistoryActions)},
	}, nil
}

// Reset ends any running duel, starts a new one and pumps it to the
// agent's first decision.
func (e *Env) Reset(ctx context.Context) (StepResult, error) {
	e.close()

	if e.cfg.Player == -1 {
		e.aiPlayer = uint8(e.rng.IntN(2))
	} else {
		e.aiPlayer = uint8(e.cfg.Player)
	}
	e.mode = e.cfg.PlayModes[e.rng.IntN(len(e.cfg.PlayModes))]
	e.players = [2]Player{}
	opp := 1 - e.aiPlayer
	switch e.mode {
	case ModeHuman:
		if e.cfg.HumanIn == nil {
			return StepResult{}, errors.New("human play needs an input")
		}
		out := e.cfg.HumanOut
		if out == nil {
			out = io.Discard
		}
		e.players[opp] = NewHumanPlayer(e.cfg.HumanIn, out)
	case ModeRandom:
		e.players[opp] = NewRandomBot(rand.New(rand.NewPCG(e.rng.Uint64(), e.rng.Uint64())))
	case ModeGreedy:
		e.players[opp] = GreedyBot{}
	}

	duelLifecycle.Lock()
	e.handle = e.engine.CreateDuel(e.rng.Uint32())
	duelLifecycle.Unlock()

	e.h = NewHandler(e.engine, e.store, e.handle, e.cfg.Narrator)
	for i, name := range []string{e.cfg.Deck1, e.cfg.Deck2} {
		p := uint8(i)
		e.engine.SetPlayerInfo(e.handle, int32(p), StartLP, StartHandCount, DrawCount)
		e.loadDeck(name, p)
		e.h.lp[p] = StartLP
	}
	e.engine.StartDuel(e.handle, uint32(core.RuleMR5)<<16)
	e.h.started = true

	for _, h := range e.history {
		h.Reset()
	}
	e.err = nil
	e.done = false
	e.steps = 0
	e.episode = uuid.New()
	e.logger.Debug().
		Str("episode", e.episode.String()).
		Str("mode", string(e.mode)).
		Uint8("seat", e.aiPlayer).
		Msg("episode started")

	if err := e.next(ctx, true); err != nil {
		return StepResult{}, e.fail(err)
	}
	return e.result(), nil
}

// loadDeck puts a deck into the engine: the main deck shuffled, then the
// extra deck in its stored order.
func (e *Env) loadDeck(name string, p uint8) {
	d, _ := e.store.Deck(name)
	main := append([]uint32(nil), d.Main...)
	e.rng.Shuffle(len(main), func(i, j int) { main[i], main[j] = main[j], main[i] })
	for _, code := range append(main, d.Extra...) {
		e.engine.NewCard(e.handle, code, p, p, core.LocationDeck, 0, core.PosFaceDownDefense)
	}
}

// Step answers the pending decision with option idx and pumps the duel to
// the next decision of the agent or to the end of the episode.
func (e *Env) Step(ctx context.Context, idx int) (StepResult, error) {
	if e.err != nil {
		return StepResult{}, e.err
	}
	if e.done || e.h.Pending() == nil {
		return StepResult{}, ErrNotRunning
	}
	if err := e.apply(e.h.Pending(), idx); err != nil {
		return StepResult{}, e.fail(err)
	}
	e.steps++
	if err := e.next(ctx, false); err != nil {
		return StepResult{}, e.fail(err)
	}
	if !e.done && e.cfg.MaxSteps > 0 && e.steps >= e.cfg.MaxSteps {
		e.logger.Debug().Str("episode", e.episode.String()).Int("steps", e.steps).Msg("episode truncated")
		e.close()
		e.done = true
		e.h.pending = nil
		return StepResult{Done: true, Info: e.info()}, nil
	}
	return e.result(), nil
}

func (e *Env) fail(err error) error {
	e.err = err
	e.logger.Error().Err(err).Str("episode", e.episode.String()).Stringer("msg", e.h.msg).Msg("duel aborted")
	e.close()
	return err
}

// Close ends the running duel, if any. The Env can still be Reset.
func (e *Env) Close() {
	e.close()
	e.done = true
}

func (e *Env) close() {
	if e.h != nil {
		e.h.endDuel()
	}
}

// isAgent reports whether the agent decides for player.
func (e *Env) isAgent(player uint8) bool {
	return e.mode == ModeSelf || player == e.aiPlayer
}

// next is the pump loop. It returns with a pending decision for the agent,
// or with done set once the engine stops.
func (e *Env) next(ctx context.Context, processFirst bool) error {
	skip := !processFirst
	for e.h.started {
		if !skip {
			e.res = e.engine.Process(e.handle)
			n := e.engine.GetMessage(e.handle, e.buf)
			e.h.Load(e.buf[:n])
		}
		skip = false
		for !e.h.Done() {
			if err := e.h.Handle(); err != nil {
				return err
			}
			d := e.h.Pending()
			if d == nil || len(d.Options) == 0 {
				continue
			}
			if e.isAgent(d.Player) {
				place := d.Msg == core.MsgSelectPlace || d.Msg == core.MsgSelectDisfield
				if !place && len(d.Options) > 1 {
					return nil
				}
				if err := e.apply(d, 0); err != nil {
					return err
				}
				continue
			}
			idx, err := e.players[d.Player].Choose(ctx, d)
			if err != nil {
				return err
			}
			if err := e.apply(d, idx); err != nil {
				return err
			}
		}
		if e.res&core.ProcessEnd != 0 {
			break
		}
	}
	e.done = true
	e.h.pending = nil
	return nil
}

// apply sends the response for option idx and records the decision.
func (e *Env) apply(d *PendingDecision, idx int) error {
	resp, err := d.Respond(idx)
	if err != nil {
		return err
	}
	a := Action{Msg: d.Msg, Player: d.Player, Option: d.Options[idx]}
	if sp, _, ok := OptionSpec(d.Msg, a.Option); ok {
		a.Code = e.codeAt(d.Player, sp)
	}
	if len(resp.Buf) > core.ResponseBufferSize {
		return fmt.Errorf("%w: %d byte response for %s", ErrDesync, len(resp.Buf), d.Msg)
	}
	if resp.Buf != nil {
		e.engine.SetResponseB(e.handle, resp.Buf)
	} else {
		e.engine.SetResponseI(e.handle, resp.Value)
	}
	e.history[d.Player&1].Push(a)
	e.mover = d.Player
	if e.cfg.Narrator != nil {
		e.cfg.Narrator.Log(log.NewDecisionEvent(e.h.turn, e.h.phaseName(), int(d.Player), a.Option, d.Options))
	}
	return nil
}

// codeAt returns the code of the card at sp as seen by viewer, or 0.
func (e *Env) codeAt(viewer uint8, sp codec.Spec) uint32 {
	if sp.Location&core.LocationOverlay != 0 {
		return 0
	}
	controller := viewer
	if sp.Opponent {
		controller = 1 - viewer
	}
	n := e.engine.QueryCard(e.handle, controller, sp.Location, sp.Sequence, core.QueryCode, e.h.qbuf, false)
	if n <= 0 {
		return 0
	}
	q, err := wire.ParseQuery(wire.NewReader(e.h.qbuf[:n]))
	if err != nil || q.Empty {
		return 0
	}
	return q.Code
}

func (e *Env) reward() float32 {
	if !e.done {
		return 0
	}
	winner, _ := e.h.Result()
	if winner > 1 {
		return 0
	}
	ref := e.aiPlayer
	if e.mode == ModeSelf {
		ref = e.mover
	}
	if winner == ref {
		return 1
	}
	return -1
}

func (e *Env) info() Info {
	_, reason := e.h.Result()
	info := Info{IsSelfplay: e.mode == ModeSelf, WinReason: reason, ToPlay: e.aiPlayer}
	if d := e.h.Pending(); d != nil {
		info.NumOptions = len(d.Options)
		info.ToPlay = d.Player
		info.Options = d.Options
	}
	return info
}

func (e *Env) result() StepResult {
	return StepResult{Reward: e.reward(), Done: e.done, Info: e.info()}
}

// --- accessors for observation encoding ---

// Pending returns the decision the agent must answer, or nil.
func (e *Env) Pending() *PendingDecision {
	if e.done || e.h == nil {
		return nil
	}
	return e.h.Pending()
}

// Done reports whether the episode is over.
func (e *Env) Done() bool { return e.done }

// Episode returns the id of the current episode.
func (e *Env) Episode() uuid.UUID { return e.episode }

// Seat returns the seat the agent plays in fixed-seat modes.
func (e *Env) Seat() uint8 { return e.aiPlayer }

// Mode returns the play mode drawn for the current episode.
func (e *Env) Mode() PlayMode { return e.mode }

// Steps returns the number of agent steps taken this episode.
func (e *Env) Steps() int { return e.steps }

// Store returns the card store the environment was built with.
func (e *Env) Store() *carddb.Store { return e.store }

func (e *Env) Turn() int                { return e.h.Turn() }
func (e *Env) LP(p uint8) int32         { return e.h.LP(p) }
func (e *Env) Phase() int               { return e.h.Phase() }
func (e *Env) TurnPlayer() uint8        { return e.h.TurnPlayer() }
func (e *Env) FirstPlayer() uint8       { return e.h.FirstPlayer() }
func (e *Env) History(p uint8) []Action { return e.history[p&1].Actions() }

// Result returns the winner and win reason, both 255 while undecided.
func (e *Env) Result() (winner, reason uint8) {
	if e.h == nil {
		return 255, 255
	}
	return e.h.Result()
}

// FieldCards returns the engine's records for one zone of one player,
// empty slots included.
func (e *Env) FieldCards(player, location uint8, flags uint32) ([]wire.CardQuery, error) {
	buf := make([]byte, core.QueryBufferSize)
	n := e.engine.QueryFieldCard(e.handle, player, location, flags, buf, false)
	qs, err := wire.ParseQueries(buf[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: field query %s: %v", ErrDesync, codec.LocationName(location), err)
	}
	return qs, nil
}
