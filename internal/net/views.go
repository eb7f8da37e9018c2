package net

import (
	"fmt"
	"slices"
	"sync"

	"github.com/peterkuimelis/ygoenv/internal/carddb"
	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

// StateSource is the duel state a StateView is built from. *duel.Env
// satisfies it.
type StateSource interface {
	FieldCards(player, location uint8, flags uint32) ([]wire.CardQuery, error)
	LP(player uint8) int32
	Phase() int
	Turn() int
	TurnPlayer() uint8
	Store() *carddb.Store
}

const viewQueryFlags = core.QueryCode | core.QueryPosition | core.QueryAttack | core.QueryDefense | core.QueryOverlayCard

// BuildStateView creates a StateView from the perspective of the given player.
func BuildStateView(src StateSource, player uint8) (*StateView, error) {
	sv := &StateView{
		Turn:       src.Turn(),
		Phase:      codec.PhaseName(src.Phase()),
		IsYourTurn: src.TurnPlayer() == player,
	}
	var err error
	if sv.You, err = buildPlayerView(src, player, true); err != nil {
		return nil, err
	}
	if sv.Opponent, err = buildPlayerView(src, 1-player, false); err != nil {
		return nil, err
	}
	return sv, nil
}

func buildPlayerView(src StateSource, player uint8, isOwner bool) (PlayerView, error) {
	pv := PlayerView{LP: int(src.LP(player))}
	store := src.Store()

	zones := make(map[uint8][]wire.CardQuery)
	for _, loc := range []uint8{
		core.LocationDeck, core.LocationHand, core.LocationMZone, core.LocationSZone,
		core.LocationGrave, core.LocationRemoved, core.LocationExtra,
	} {
		qs, err := src.FieldCards(player, loc, viewQueryFlags)
		if err != nil {
			return PlayerView{}, err
		}
		zones[loc] = qs
	}

	pv.DeckCount = countCards(zones[core.LocationDeck])
	pv.GraveCount = countCards(zones[core.LocationGrave])
	pv.RemovedCount = countCards(zones[core.LocationRemoved])
	pv.ExtraCount = countCards(zones[core.LocationExtra])
	for _, q := range zones[core.LocationHand] {
		if q.Empty {
			continue
		}
		pv.HandCount++
		if isOwner {
			pv.Hand = append(pv.Hand, cardName(store, q.Code))
		}
	}
	for i := range pv.Monsters {
		pv.Monsters[i] = ZoneView{Empty: true}
	}
	for i, q := range zones[core.LocationMZone] {
		if i < len(pv.Monsters) {
			pv.Monsters[i] = MonsterZoneView(store, q, isOwner)
		}
	}
	for i := range pv.SpellTraps {
		pv.SpellTraps[i] = ZoneView{Empty: true}
	}
	for i, q := range zones[core.LocationSZone] {
		if i < len(pv.SpellTraps) {
			pv.SpellTraps[i] = SpellZoneView(store, q, isOwner)
		}
	}
	return pv, nil
}

func countCards(qs []wire.CardQuery) int {
	n := 0
	for _, q := range qs {
		if !q.Empty {
			n++
		}
	}
	return n
}

func cardName(store *carddb.Store, code uint32) string {
	c, err := store.Card(code)
	if err != nil {
		return fmt.Sprintf("#%d", code)
	}
	return c.Name
}

// MonsterZoneView creates a ZoneView for a monster zone.
func MonsterZoneView(store *carddb.Store, q wire.CardQuery, isOwner bool) ZoneView {
	if q.Empty {
		return ZoneView{Empty: true}
	}
	zv := ZoneView{
		Name:      cardName(store, q.Code),
		ATK:       int(q.Attack),
		DEF:       int(q.Defense),
		Position:  codec.PositionName(q.Position),
		Materials: len(q.Overlay),
	}
	if q.Position&core.PosFaceDown != 0 {
		zv.FaceDown = true
		if !isOwner {
			return ZoneView{FaceDown: true, Position: zv.Position}
		}
	}
	return zv
}

// SpellZoneView creates a ZoneView for a spell & trap zone.
func SpellZoneView(store *carddb.Store, q wire.CardQuery, isOwner bool) ZoneView {
	if q.Empty {
		return ZoneView{Empty: true}
	}
	if q.Position&core.PosFaceDown != 0 {
		if isOwner {
			return ZoneView{FaceDown: true, Name: cardName(store, q.Code)}
		}
		return ZoneView{FaceDown: true}
	}
	return ZoneView{Name: cardName(store, q.Code)}
}

// EventCollector is a narrator that buffers events until they are drained.
// It is safe for concurrent use.
type EventCollector struct {
	mu  sync.Mutex
	mem log.MemoryLogger
}

func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

func (c *EventCollector) Log(event log.GameEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem.Log(event)
}

// Events returns the events not yet drained.
func (c *EventCollector) Events() []log.GameEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.mem.Events())
}

// Drain returns the events logged since the last drain as seen by viewer,
// or every perspective when viewer is negative.
func (c *EventCollector) Drain(viewer int) []EventView {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []EventView
	for _, ev := range c.mem.Drain() {
		if viewer >= 0 && ev.Player != viewer {
			continue
		}
		out = append(out, EventView{
			Turn:    ev.Turn,
			Phase:   ev.Phase,
			Player:  ev.Player,
			Type:    ev.Type.String(),
			Card:    ev.Card,
			Details: ev.Details,
		})
	}
	return out
}
