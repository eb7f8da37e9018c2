package duel

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/core/coretest"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

func newEnv(t *testing.T, cfg Config) (*Env, *coretest.Engine) {
	t.Helper()
	if cfg.Deck1 == "" {
		cfg.Deck1, cfg.Deck2 = "test", "test"
	}
	if cfg.Seed == 0 {
		cfg.Seed = 7
	}
	e := coretest.New()
	env, err := NewEnv(e, testStore(t), cfg)
	require.NoError(t, err)
	return env, e
}

func TestParsePlayModes(t *testing.T) {
	modes, err := ParsePlayModes("self+random")
	require.NoError(t, err)
	assert.Equal(t, []PlayMode{ModeSelf, ModeRandom}, modes)

	_, err = ParsePlayModes("human+greedy")
	assert.Error(t, err)
	_, err = ParsePlayModes("bogus")
	assert.Error(t, err)
}

func TestNewEnvRejectsUnknownDeck(t *testing.T) {
	_, err := NewEnv(coretest.New(), testStore(t), Config{Deck1: "test", Deck2: "missing"})
	assert.Error(t, err)
}

func TestResetLoadsDuel(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Queue(coretest.Batch(coretest.NewTurn(0), coretest.NewPhase(core.PhaseMain1), coretest.YesNo(0, 30)))

	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Done)
	assert.Equal(t, 2, res.Info.NumOptions)
	assert.Equal(t, uint8(0), res.Info.ToPlay)
	assert.Equal(t, []string{"y", "n"}, res.Info.Options)

	assert.True(t, e.Started)
	assert.Equal(t, uint32(core.RuleMR5)<<16, e.Options)
	assert.Equal(t, coretest.PlayerInfo{LP: StartLP, StartCount: StartHandCount, DrawCount: DrawCount}, e.Players[1])
	require.Len(t, e.Cards, 8)
	for _, c := range e.Cards {
		assert.Equal(t, core.LocationDeck, c.Location)
		assert.Equal(t, core.PosFaceDownDefense, c.Position)
	}
	assert.Equal(t, int32(StartLP), env.LP(0))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", env.Episode().String())
}

func TestStepToWin(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Queue(
		coretest.Batch(coretest.NewTurn(0), coretest.YesNo(0, 30)),
		coretest.Batch(coretest.Win(0, 0)),
	)
	_, err := env.Reset(context.Background())
	require.NoError(t, err)

	res, err := env.Step(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, float32(1), res.Reward)
	assert.Equal(t, uint8(0), res.Info.WinReason)
	assert.Zero(t, res.Info.NumOptions)

	r, ok := e.LastResponse()
	require.True(t, ok)
	assert.Equal(t, int32(0), r.Value)

	_, err = env.Step(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestLossIsNegative(t *testing.T) {
	env, e := newEnv(t, Config{Player: 1})
	e.Queue(
		coretest.Batch(coretest.YesNo(1, 30)),
		coretest.Batch(coretest.Win(0, 1)),
	)
	_, err := env.Reset(context.Background())
	require.NoError(t, err)
	res, err := env.Step(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, float32(-1), res.Reward)
}

func TestOpponentBotAnswers(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0, PlayModes: []PlayMode{ModeGreedy}})
	e.Queue(
		coretest.Batch(coretest.YesNo(1, 30)),
		coretest.Batch(coretest.YesNo(0, 30)),
	)
	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(0), res.Info.ToPlay)
	require.Len(t, e.Responses, 1)
	assert.Equal(t, int32(1), e.Responses[0].Value)
	require.Len(t, env.History(1), 1)
	assert.Empty(t, env.History(0))
}

func TestForcedDecisionsAnswered(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Queue(
		coretest.Batch(coretest.Option(0, 12)),
		coretest.Batch(coretest.Place(0, 1, 0xffffffff&^0x6)),
		coretest.Batch(coretest.YesNo(0, 30)),
	)
	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.MsgSelectYesNo, env.Pending().Msg)
	assert.Equal(t, 2, res.Info.NumOptions)
	require.Len(t, e.Responses, 2)
	assert.Equal(t, int32(0), e.Responses[0].Value)
	assert.Equal(t, []byte{0, core.LocationMZone, 1}, e.Responses[1].Buf)
}

func TestSelfPlayRewardFollowsMover(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0, PlayModes: []PlayMode{ModeSelf}})
	e.Queue(
		coretest.Batch(coretest.YesNo(0, 30)),
		coretest.Batch(coretest.YesNo(1, 30)),
		coretest.Batch(coretest.Win(1, 0)),
	)
	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Info.IsSelfplay)
	assert.Equal(t, uint8(0), res.Info.ToPlay)

	res, err = env.Step(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), res.Info.ToPlay)

	res, err = env.Step(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, float32(1), res.Reward, "player 1 moved last and won")
	assert.Len(t, env.History(0), 1)
	assert.Len(t, env.History(1), 1)
}

func TestMaxStepsTruncates(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0, MaxSteps: 1})
	e.Queue(
		coretest.Batch(coretest.YesNo(0, 30)),
		coretest.Batch(coretest.YesNo(0, 30)),
	)
	_, err := env.Reset(context.Background())
	require.NoError(t, err)
	res, err := env.Step(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Zero(t, res.Reward)
	assert.Equal(t, uint8(255), res.Info.WinReason)
	assert.True(t, e.Ended)
	assert.Nil(t, env.Pending())
}

func TestCloseEndsDuel(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	env.Close() // nothing to end yet
	assert.False(t, e.Ended)

	e.Queue(coretest.Batch(coretest.YesNo(0, 30)))
	_, err := env.Reset(context.Background())
	require.NoError(t, err)
	env.Close()
	assert.True(t, e.Ended)
	_, err = env.Step(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotRunning)

	e.Queue(coretest.Batch(coretest.YesNo(0, 30)))
	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Info.NumOptions)
}

// lockCheckEngine records whether the lifecycle lock was held during each
// EndDuel call.
type lockCheckEngine struct {
	*coretest.Engine
	held []bool
}

func (e *lockCheckEngine) EndDuel(d core.Duel) {
	free := duelLifecycle.TryLock()
	if free {
		duelLifecycle.Unlock()
	}
	e.held = append(e.held, !free)
	e.Engine.EndDuel(d)
}

func TestDuelEndHoldsLifecycleLock(t *testing.T) {
	e := &lockCheckEngine{Engine: coretest.New()}
	env, err := NewEnv(e, testStore(t), Config{Deck1: "test", Deck2: "test", Player: 0, Seed: 7})
	require.NoError(t, err)
	e.Queue(
		coretest.Batch(coretest.YesNo(0, 30)),
		coretest.Batch(coretest.Win(0, 0)),
		coretest.Batch(coretest.YesNo(0, 30)),
	)
	_, err = env.Reset(context.Background())
	require.NoError(t, err)
	res, err := env.Step(context.Background(), 0)
	require.NoError(t, err)
	require.True(t, res.Done)

	_, err = env.Reset(context.Background())
	require.NoError(t, err)
	env.Close()
	assert.Equal(t, []bool{true, true}, e.held)
}

type fixedResponder struct{ buf []byte }

func (r fixedResponder) respond(int) (Response, error) { return Response{Buf: r.buf}, nil }

func TestOversizedResponseIsDesync(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Queue(coretest.Batch(coretest.YesNo(0, 30)))
	_, err := env.Reset(context.Background())
	require.NoError(t, err)
	env.h.pending = &PendingDecision{
		Msg:       core.MsgSelectCard,
		Options:   []string{"h1"},
		Responder: fixedResponder{buf: make([]byte, core.ResponseBufferSize+1)},
	}
	_, err = env.Step(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDesync)
	assert.Empty(t, e.Responses)
	assert.True(t, e.Ended)
}

func TestDesyncIsFatalUntilReset(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Queue(
		coretest.Batch(coretest.YesNo(0, 30)),
		coretest.Msg(core.MsgSelectYesNo).U8(0).Bytes(),
	)
	_, err := env.Reset(context.Background())
	require.NoError(t, err)

	_, err = env.Step(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDesync)
	_, err = env.Step(context.Background(), 0)
	assert.ErrorIs(t, err, ErrDesync, "error sticks")
	assert.True(t, e.Ended)

	e.Queue(coretest.Batch(coretest.YesNo(0, 30)))
	_, err = env.Reset(context.Background())
	require.NoError(t, err)
	_, err = env.Step(context.Background(), 5)
	assert.ErrorIs(t, err, ErrDesync, "option out of range")
}

func TestHistoryRecordsCard(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Place(wire.CardQuery{Code: beta, Controller: 0, Location: core.LocationMZone, Sequence: 0, Position: core.PosFaceUpAttack})
	b := coretest.Msg(core.MsgSelectBattleCmd).U8(0)
	menuEntry(b.U8(1), beta, core.LocationMZone, 0).U32(beta << 4)
	b.U8(0).Bool(true).Bool(false)
	e.Queue(coretest.Batch(b))

	_, err := env.Reset(context.Background())
	require.NoError(t, err)
	_, err = env.Step(context.Background(), 0)
	require.NoError(t, err)

	hist := env.History(0)
	require.Len(t, hist, 1)
	assert.Equal(t, Action{Msg: core.MsgSelectBattleCmd, Player: 0, Option: "v m1", Code: beta}, hist[0])
}

func TestHumanOpponent(t *testing.T) {
	var out bytes.Buffer
	env, e := newEnv(t, Config{
		Player:    0,
		PlayModes: []PlayMode{ModeHuman},
		HumanIn:   strings.NewReader("x\nn\n"),
		HumanOut:  &out,
	})
	e.Queue(coretest.Batch(coretest.YesNo(1, 30)))
	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, int32(0), e.Responses[0].Value)
	assert.Contains(t, out.String(), "Choose from y, n")
}

func TestVerboseNarratesDecisions(t *testing.T) {
	mem := log.NewMemoryLogger()
	env, e := newEnv(t, Config{Player: 0, Narrator: mem})
	e.Queue(coretest.Batch(coretest.NewTurn(0), coretest.YesNo(0, 30)))
	_, err := env.Reset(context.Background())
	require.NoError(t, err)
	_, err = env.Step(context.Background(), 0)
	require.NoError(t, err)

	decisions := mem.EventsOfType(log.EventDecision)
	require.Len(t, decisions, 1)
	assert.Equal(t, "P1 chose 'y' in ['y', 'n']", decisions[0].Details)
}

func TestFieldCards(t *testing.T) {
	env, e := newEnv(t, Config{Player: 0})
	e.Place(wire.CardQuery{Code: alpha, Controller: 1, Location: core.LocationMZone, Sequence: 4})
	e.Queue(coretest.Batch(coretest.YesNo(0, 30)))
	_, err := env.Reset(context.Background())
	require.NoError(t, err)

	qs, err := env.FieldCards(1, core.LocationMZone, core.QueryCode)
	require.NoError(t, err)
	require.Len(t, qs, 7)
	assert.Equal(t, alpha, qs[4].Code)

	deck, err := env.FieldCards(0, core.LocationDeck, core.QueryCode)
	require.NoError(t, err)
	assert.Len(t, deck, 4)
}
