// Package duel drives one duel on the rule engine: it decodes the engine's
// message stream, builds the legal options for each decision and maps the
// chosen option back to the engine's response format.
package duel

import (
	"fmt"

	"github.com/peterkuimelis/ygoenv/internal/carddb"
	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

// cardQueryFlags is what get_card asks the engine for.
const cardQueryFlags = core.QueryCode | core.QueryPosition | core.QueryLevel | core.QueryRank |
	core.QueryAttack | core.QueryDefense | core.QueryLScale | core.QueryRScale | core.QueryLink

// Handler decodes the messages of one duel and keeps the state they carry.
type Handler struct {
	engine   core.Engine
	store    *carddb.Store
	duel     core.Duel
	narrator log.EventLogger // nil when not verbose

	r    wire.Reader
	qbuf []byte

	msg     core.Msg
	pending *PendingDecision

	started        bool
	lp             [2]int32
	turn           int
	tp             uint8
	first          uint8
	phase          int
	winner         uint8
	reason         uint8
	chainingPlayer uint8
	chainLinks     int
}

// NewHandler returns a handler for duel d. A nil narrator disables
// narration and every card lookup that only narration needs.
func NewHandler(engine core.Engine, store *carddb.Store, d core.Duel, narrator log.EventLogger) *Handler {
	return &Handler{
		engine:   engine,
		store:    store,
		duel:     d,
		narrator: narrator,
		qbuf:     make([]byte, core.QueryBufferSize),
		winner:   255,
		reason:   255,
	}
}

// Load sets the buffer the next handle calls read from.
func (h *Handler) Load(buf []byte) { h.r.Reset(buf) }

// Done reports whether every message in the loaded buffer was handled.
func (h *Handler) Done() bool { return h.r.Done() }

// Pending returns the decision produced by the last message, if any.
func (h *Handler) Pending() *PendingDecision { return h.pending }

// LP returns a player's life points as tracked from the message stream.
func (h *Handler) LP(player uint8) int32 { return h.lp[player] }

// TurnPlayer returns the player whose turn it is.
func (h *Handler) TurnPlayer() uint8 { return h.tp }

// FirstPlayer returns the player who took the first turn.
func (h *Handler) FirstPlayer() uint8 { return h.first }

// Phase returns the current phase.
func (h *Handler) Phase() int { return h.phase }

// Turn returns the 1-based turn counter.
func (h *Handler) Turn() int { return h.turn }

// Result returns the winner and win reason; both are 255 until MSG_WIN.
func (h *Handler) Result() (winner, reason uint8) { return h.winner, h.reason }

func (h *Handler) narrating() bool { return h.narrator != nil }

func (h *Handler) emit(e log.GameEvent) { h.narrator.Log(e) }

func (h *Handler) phaseName() string { return codec.PhaseName(h.phase) }

// each emits one event per viewing player.
func (h *Handler) each(event func(viewer int) log.GameEvent) {
	for v := 0; v < 2; v++ {
		h.emit(event(v))
	}
}

// readErr wraps a cursor overrun as a desync.
func (h *Handler) readErr() error {
	if err := h.r.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDesync, h.msg, err)
	}
	return nil
}

func (h *Handler) card(code uint32) (carddb.Card, error) {
	c, err := h.store.Card(code)
	if err != nil {
		return carddb.Card{}, fmt.Errorf("%s: %w", h.msg, err)
	}
	return c, nil
}

// placedCard looks a card up and places it at a packed location word.
func (h *Handler) placedCard(code, loc uint32) (carddb.Card, error) {
	c, err := h.card(code)
	if err != nil {
		return c, err
	}
	c.SetLocation(loc)
	return c, nil
}

// queryCard reads a card's current state from the engine. Level, rank and
// link rating all land in Level; a link monster's markers replace its
// defense.
func (h *Handler) queryCard(player, loc, seq uint8) (carddb.Card, error) {
	n := h.engine.QueryCard(h.duel, player, loc, seq, cardQueryFlags, h.qbuf, false)
	if n <= 0 {
		return carddb.Card{}, fmt.Errorf("%w: no record for %s", ErrDesync, codec.FormatSpec(loc, seq, 0, player != 0))
	}
	q, err := wire.ParseQuery(wire.NewReader(h.qbuf[:n]))
	if err != nil {
		return carddb.Card{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	if q.Empty {
		return carddb.Card{}, fmt.Errorf("%w: empty card at player %d %s", ErrDesync, player, codec.FormatSpec(loc, seq, 0, false))
	}
	c, err := h.card(q.Code)
	if err != nil {
		return c, err
	}
	c.SetLocation(q.PackedLocation())
	if q.Level&0xff > 0 {
		c.Level = q.Level & 0xff
	}
	if q.Rank&0xff > 0 {
		c.Level = q.Rank & 0xff
	}
	c.Attack = q.Attack
	c.Defense = q.Defense
	c.LScale = q.LScale
	c.RScale = q.RScale
	if q.LinkRating&0xff > 0 {
		c.Level = q.LinkRating & 0xff
	}
	if q.LinkMarker > 0 {
		c.Defense = int32(q.LinkMarker)
	}
	return c, nil
}

// Handle decodes one message at the cursor. A decision message leaves a
// PendingDecision behind; everything else only updates state and narrates.
func (h *Handler) Handle() error {
	h.msg = core.Msg(h.r.U8())
	h.pending = nil
	if err := h.handle(); err != nil {
		return err
	}
	return h.readErr()
}

func (h *Handler) handle() error {
	switch h.msg {
	case core.MsgNewTurn:
		h.tp = h.r.U8()
		h.turn++
		if h.turn == 1 {
			h.first = h.tp
		}
		if h.narrating() {
			h.each(func(v int) log.GameEvent { return log.NewTurnEvent(h.turn, v, int(h.tp)) })
		}
	case core.MsgNewPhase:
		h.phase = int(h.r.U16())
		if h.narrating() {
			h.each(func(v int) log.GameEvent { return log.NewPhaseChangeEvent(h.turn, h.phaseName(), v) })
		}
	case core.MsgDamage:
		p, amount := h.r.U8(), h.r.U32()
		return h.setLP(p, h.lp[p&1]-int32(amount), "damage")
	case core.MsgRecover:
		p, amount := h.r.U8(), h.r.U32()
		return h.setLP(p, h.lp[p&1]+int32(amount), "recover")
	case core.MsgLPUpdate:
		p, lp := h.r.U8(), h.r.U32()
		return h.setLP(p, int32(lp), "update")
	case core.MsgPayLPCost:
		p, cost := h.r.U8(), h.r.U32()
		return h.setLP(p, h.lp[p&1]-int32(cost), "cost")
	case core.MsgWin:
		h.onWin()
	case core.MsgRetry:
		if h.narrating() {
			return ErrRetry
		}
	case core.MsgChaining:
		return h.onChaining()
	case core.MsgChainEnd:
		h.chainLinks = 0
	case core.MsgDraw:
		return h.onDraw()
	case core.MsgMove:
		return h.onMove()
	case core.MsgSet:
		return h.onSet()
	case core.MsgPosChange:
		return h.onPosChange()
	case core.MsgSummoning, core.MsgSpSummoning, core.MsgFlipSummoning:
		return h.onSummoning()
	case core.MsgAttack:
		return h.onAttack()
	case core.MsgBattle:
		return h.onBattle()
	case core.MsgDamageStepStart, core.MsgDamageStepEnd:
		if h.narrating() {
			begin := h.msg == core.MsgDamageStepStart
			h.each(func(v int) log.GameEvent { return log.NewDamageStepEvent(h.turn, h.phaseName(), v, begin) })
		}

	case core.MsgSelectBattleCmd:
		return h.onBattleCmd()
	case core.MsgSelectIdleCmd:
		return h.onIdleCmd()
	case core.MsgSelectCard:
		return h.onSelectCard()
	case core.MsgSelectTribute:
		return h.onSelectTribute()
	case core.MsgSelectChain:
		return h.onSelectChain()
	case core.MsgSelectYesNo:
		return h.onSelectYesNo()
	case core.MsgSelectEffectYN:
		return h.onSelectEffectYN()
	case core.MsgSelectPlace, core.MsgSelectDisfield:
		return h.onSelectPlace()
	case core.MsgSelectOption:
		return h.onSelectOption()
	case core.MsgSelectPosition:
		return h.onSelectPosition()
	case core.MsgSelectUnselect:
		return h.onSelectUnselect()

	case core.MsgSortChain, core.MsgSelectCounter, core.MsgSelectSum, core.MsgSortCard,
		core.MsgAnnounceRace, core.MsgAnnounceAttrib, core.MsgAnnounceCard, core.MsgAnnounceNumber,
		core.MsgRockPaperScissors:
		return fmt.Errorf("%w: %s", ErrUnsupported, h.msg)

	default:
		if !h.skipBody(h.msg) {
			h.r.SkipToEnd()
		}
	}
	return nil
}

// fixedBodies are the body sizes of narrative messages that are skipped
// without decoding.
var fixedBodies = map[core.Msg]int{
	core.MsgReverseDeck: 0, core.MsgSummoned: 0, core.MsgSpSummoned: 0, core.MsgFlipSummoned: 0,
	core.MsgAttackDisabled: 0,

	core.MsgShuffleDeck: 1, core.MsgRefreshDeck: 1, core.MsgSwapGraveDeck: 1, core.MsgChained: 1,
	core.MsgChainSolving: 1, core.MsgChainSolved: 1, core.MsgChainNegated: 1, core.MsgChainDisabled: 1,

	core.MsgFieldDisabled: 4, core.MsgUnequip: 4, core.MsgMatchKill: 4,

	core.MsgHint: 6, core.MsgDeckTop: 6, core.MsgPlayerHint: 6,

	core.MsgAddCounter: 7, core.MsgRemoveCounter: 7,

	core.MsgEquip: 8, core.MsgCardTarget: 8, core.MsgCancelTarget: 8, core.MsgMissedEffect: 8,

	core.MsgCardHint: 9,

	core.MsgSwap: 16,
}

// skipBody advances past a known narrative message. It reports false for
// tags it does not know.
func (h *Handler) skipBody(tag core.Msg) bool {
	if n, ok := fixedBodies[tag]; ok {
		h.r.Skip(n)
		return true
	}
	switch tag {
	case core.MsgShuffleHand, core.MsgShuffleExtra, core.MsgCardSelected, core.MsgRandomSelected:
		h.r.U8()
		n := h.r.U8()
		h.r.Skip(int(n) * 4)
	case core.MsgBecomeTarget:
		n := h.r.U8()
		h.r.Skip(int(n) * 4)
	case core.MsgShuffleSetCard:
		h.r.U8()
		n := h.r.U8()
		h.r.Skip(int(n) * 8)
	case core.MsgTossCoin, core.MsgTossDice:
		h.r.U8()
		n := h.r.U8()
		h.r.Skip(int(n))
	case core.MsgConfirmDecktop, core.MsgConfirmCards, core.MsgConfirmExtratop:
		h.r.U8()
		n := h.r.U8()
		h.r.Skip(int(n) * 7)
	case core.MsgTagSwap:
		h.r.SkipToEnd()
	default:
		return false
	}
	return true
}

func (h *Handler) setLP(player uint8, lp int32, reason string) error {
	if err := h.readErr(); err != nil {
		return err
	}
	if player > 1 {
		return fmt.Errorf("%w: %s for player %d", ErrDesync, h.msg, player)
	}
	old := h.lp[player]
	h.lp[player] = lp
	if h.narrating() {
		h.each(func(v int) log.GameEvent {
			return log.NewLPChangeEvent(h.turn, h.phaseName(), v, int(player), int(old), int(lp), reason)
		})
	}
	return nil
}

func (h *Handler) onWin() {
	h.winner = h.r.U8()
	h.reason = h.r.U8()
	h.endDuel()
	if h.narrating() {
		reason := codec.WinReason(h.reason)
		h.each(func(v int) log.GameEvent {
			return log.NewWinEvent(h.turn, h.phaseName(), v, int(h.winner), reason)
		})
	}
}

// endDuel tears the engine duel down under the lifecycle lock.
func (h *Handler) endDuel() {
	if !h.started {
		return
	}
	duelLifecycle.Lock()
	h.engine.EndDuel(h.duel)
	duelLifecycle.Unlock()
	h.started = false
}

func (h *Handler) onDraw() error {
	player := h.r.U8()
	n := int(h.r.U8())
	if !h.narrating() {
		h.r.Skip(n * 4)
		return nil
	}
	codes := make([]uint32, n)
	for i := range codes {
		codes[i] = h.r.U32() & 0x7fffffff
	}
	if err := h.readErr(); err != nil {
		return err
	}
	names := make([]string, n)
	for i, code := range codes {
		c, err := h.card(code)
		if err != nil {
			return err
		}
		names[i] = c.Name
	}
	h.each(func(v int) log.GameEvent {
		return log.NewDrawEvent(h.turn, h.phaseName(), v, int(player), names)
	})
	return nil
}

// moveKind classifies a MSG_MOVE the way the duel log words it. ok is false
// for moves that are not narrated.
func moveKind(from, to carddb.Card, reason uint32) (kind log.EventType, ok bool) {
	moved := from.Location() != to.Location()
	switch {
	case reason&core.ReasonDestroy != 0 && moved:
		return log.EventDestroy, true
	case !moved && from.Location()&core.LocationOnField != 0:
		if from.Controller() != to.Controller() {
			return log.EventChangeControl, true
		}
		return log.EventZoneChange, true
	case reason&core.ReasonDiscard != 0 && moved:
		return log.EventDiscard, true
	case (from.Location() == core.LocationRemoved || from.Location() == core.LocationGrave) &&
		to.Location()&core.LocationOnField != 0:
		return log.EventReturnToField, true
	case to.Location() == core.LocationHand && moved:
		return log.EventAddToHand, true
	case reason&(core.ReasonRelease|core.ReasonSummon) != 0 && moved:
		return log.EventTribute, true
	case from.Location() == core.LocationOverlay|core.LocationMZone && to.Location()&core.LocationGrave != 0:
		return log.EventDetach, true
	case moved && to.Location() == core.LocationGrave:
		return log.EventSendToGrave, true
	case moved && to.Location() == core.LocationRemoved:
		return log.EventBanish, true
	case moved && to.Location() == core.LocationDeck:
		return log.EventReturnToDeck, true
	case moved && to.Location() == core.LocationExtra:
		return log.EventReturnToExtra, true
	case from.Location() == core.LocationDeck && to.Location() == core.LocationSZone && to.Position() != core.PosFaceDown:
		return log.EventActivate, true
	}
	return 0, false
}

func (h *Handler) onMove() error {
	if !h.narrating() {
		h.r.Skip(16)
		return nil
	}
	code, oldLoc, newLoc, reason := h.r.U32(), h.r.U32(), h.r.U32(), h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	from, err := h.placedCard(code, oldLoc)
	if err != nil {
		return err
	}
	to := from
	to.SetLocation(newLoc)
	kind, ok := moveKind(from, to, reason)
	if !ok {
		return nil
	}
	hidden := from.Position()&core.PosFaceDown != 0 && to.Position()&core.PosFaceDown != 0
	owner := from.Controller()
	h.each(func(v int) log.GameEvent {
		name := from.Name
		if hidden && uint8(v) != owner {
			name = "Face-down card"
		}
		if kind == log.EventActivate {
			return log.NewActivateEvent(h.turn, h.phaseName(), v, int(owner), name, to.Spec(uint8(v)))
		}
		return log.NewMoveEvent(h.turn, h.phaseName(), v, int(owner), kind, name, from.Spec(uint8(v)), to.Spec(uint8(v)))
	})
	return nil
}

func (h *Handler) onSet() error {
	if !h.narrating() {
		h.r.Skip(8)
		return nil
	}
	code, loc := h.r.U32(), h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	c, err := h.placedCard(code, loc)
	if err != nil {
		return err
	}
	h.each(func(v int) log.GameEvent {
		return log.NewSetEvent(h.turn, h.phaseName(), v, int(c.Controller()), c.Name, c.Spec(uint8(v)), c.PositionName())
	})
	return nil
}

func (h *Handler) onPosChange() error {
	if !h.narrating() {
		h.r.Skip(9)
		return nil
	}
	code, loc, pos := h.r.U32(), h.r.U32(), h.r.U8()
	if err := h.readErr(); err != nil {
		return err
	}
	c, err := h.placedCard(code, loc)
	if err != nil {
		return err
	}
	prev := c.PositionName()
	c.SetPosition(pos)
	h.each(func(v int) log.GameEvent {
		return log.NewChangePositionEvent(h.turn, h.phaseName(), v, c.Name, c.Spec(uint8(v)), prev, c.PositionName())
	})
	return nil
}

func (h *Handler) onSummoning() error {
	if !h.narrating() {
		h.r.Skip(8)
		return nil
	}
	code, loc := h.r.U32(), h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	c, err := h.placedCard(code, loc)
	if err != nil {
		return err
	}
	p := int(c.Controller())
	h.each(func(v int) log.GameEvent {
		switch h.msg {
		case core.MsgSpSummoning:
			return log.NewSpecialSummonEvent(h.turn, h.phaseName(), v, p, c.Name, c.Stats(), c.PositionName())
		case core.MsgFlipSummoning:
			return log.NewFlipSummonEvent(h.turn, h.phaseName(), v, p, c.Name, c.Spec(uint8(v)))
		}
		return log.NewSummonEvent(h.turn, h.phaseName(), v, p, c.Name, c.Stats(), c.PositionName())
	})
	return nil
}

func (h *Handler) onChaining() error {
	code, loc := h.r.U32(), h.r.U32()
	h.r.Skip(3) // target controller, location, sequence
	h.r.U32()   // desc
	h.r.U8()    // chain count
	if err := h.readErr(); err != nil {
		return err
	}
	h.chainingPlayer = uint8(loc)
	h.chainLinks++
	if !h.narrating() {
		return nil
	}
	c, err := h.placedCard(code, loc)
	if err != nil {
		return err
	}
	h.each(func(v int) log.GameEvent {
		return log.NewChainLinkEvent(h.turn, h.phaseName(), v, int(c.Controller()), c.Name, c.Spec(uint8(v)), h.chainLinks)
	})
	return nil
}

func unpackLoc(w uint32) (controller, location, sequence, position uint8) {
	return uint8(w), uint8(w >> 8), uint8(w >> 16), uint8(w >> 24)
}

func (h *Handler) onAttack() error {
	if !h.narrating() {
		h.r.Skip(8)
		return nil
	}
	attacker, target := h.r.U32(), h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	if attacker == 0 {
		return nil
	}
	ac, al, as, _ := unpackLoc(attacker)
	a, err := h.queryCard(ac, al, as)
	if err != nil {
		return err
	}
	if target == 0 {
		h.each(func(v int) log.GameEvent {
			return log.NewDirectAttackDeclareEvent(h.turn, h.phaseName(), v, int(ac), a.Spec(uint8(v))+" ("+a.Name+")")
		})
		return nil
	}
	tc, tl, ts, _ := unpackLoc(target)
	t, err := h.queryCard(tc, tl, ts)
	if err != nil {
		return err
	}
	h.each(func(v int) log.GameEvent {
		name := t.Name
		if t.Controller() != uint8(v) && t.Position()&core.PosFaceDown != 0 {
			name = t.PositionName() + " card"
		}
		return log.NewAttackDeclareEvent(h.turn, h.phaseName(), v, int(ac),
			a.Spec(uint8(v))+" ("+a.Name+")", t.Spec(uint8(v))+" ("+name+")")
	})
	return nil
}

func battleStats(c carddb.Card, atk, def uint32) string {
	if c.IsLink() {
		return fmt.Sprintf("%d", int32(atk))
	}
	return fmt.Sprintf("%d/%d", int32(atk), int32(def))
}

func (h *Handler) onBattle() error {
	if !h.narrating() {
		h.r.Skip(26)
		return nil
	}
	attacker, aa, ad := h.r.U32(), h.r.U32(), h.r.U32()
	h.r.U8()
	target, da, dd := h.r.U32(), h.r.U32(), h.r.U32()
	h.r.U8()
	if err := h.readErr(); err != nil {
		return err
	}
	ac, al, as, _ := unpackLoc(attacker)
	a, err := h.queryCard(ac, al, as)
	if err != nil {
		return err
	}
	aStats := battleStats(a, aa, ad)
	var tName, tStats string
	if tc, tl, ts, _ := unpackLoc(target); tl != 0 {
		t, err := h.queryCard(tc, tl, ts)
		if err != nil {
			return err
		}
		tName, tStats = t.Name, battleStats(t, da, dd)
	}
	h.each(func(v int) log.GameEvent {
		return log.NewBattleEvent(h.turn, h.phaseName(), v, a.Name, aStats, tName, tStats)
	})
	return nil
}
