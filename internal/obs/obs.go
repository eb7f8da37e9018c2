// Package obs encodes a duel into the fixed-shape byte tensors a training
// harness consumes: card rows, a global row, one row per legal option and
// the deciding player's recent actions.
package obs

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/peterkuimelis/ygoenv/internal/carddb"
	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

// Row widths.
const (
	CardFeatures   = 39
	GlobalFeatures = 8
	ActionFeatures = 15
)

// Shape holds the configured tensor heights.
type Shape struct {
	MaxCards        int
	MaxOptions      int
	NHistoryActions int
}

// DefaultShape is the shape used when none is configured.
func DefaultShape() Shape {
	return Shape{MaxCards: 160, MaxOptions: 24, NHistoryActions: 16}
}

// Observation is one encoded state. Tensors are flat and row-major.
type Observation struct {
	Shape   Shape   `json:"shape"`
	Viewer  uint8   `json:"viewer"`
	Cards   []uint8 `json:"cards"`
	Global  []uint8 `json:"global"`
	Actions []uint8 `json:"actions"`
	History []uint8 `json:"history"`
}

// CardRow returns card row i.
func (o *Observation) CardRow(i int) []uint8 {
	return o.Cards[i*CardFeatures : (i+1)*CardFeatures]
}

// ActionRow returns action row i.
func (o *Observation) ActionRow(i int) []uint8 {
	return o.Actions[i*ActionFeatures : (i+1)*ActionFeatures]
}

// HistoryRow returns history row i.
func (o *Observation) HistoryRow(i int) []uint8 {
	return o.History[i*ActionFeatures : (i+1)*ActionFeatures]
}

// Source is the duel state an observation is built from. *duel.Env
// satisfies it.
type Source interface {
	FieldCards(player, location uint8, flags uint32) ([]wire.CardQuery, error)
	Pending() *duel.PendingDecision
	History(player uint8) []duel.Action
	LP(player uint8) int32
	Phase() int
	TurnPlayer() uint8
	FirstPlayer() uint8
	Seat() uint8
	Store() *carddb.Store
}

var _ Source = (*duel.Env)(nil)

// zoneOrder is the order zones are laid out within one side.
var zoneOrder = []uint8{
	core.LocationDeck, core.LocationHand, core.LocationMZone, core.LocationSZone,
	core.LocationGrave, core.LocationRemoved, core.LocationExtra,
}

const cardQueryFlags = core.QueryCode | core.QueryPosition | core.QueryType | core.QueryLevel |
	core.QueryRank | core.QueryAttribute | core.QueryRace | core.QueryAttack | core.QueryDefense |
	core.QueryOverlayCard | core.QueryLink

// Encoder builds observations of a fixed shape.
type Encoder struct {
	shape Shape

	logger   zerolog.Logger
	overflow sync.Once
}

func NewEncoder(shape Shape) (*Encoder, error) {
	if shape.MaxCards <= 0 || shape.MaxOptions <= 0 || shape.NHistoryActions <= 0 {
		return nil, fmt.Errorf("observation shape %+v has a zero dimension", shape)
	}
	return &Encoder{shape: shape, logger: zerolog.Nop()}, nil
}

// WithLogger sets the logger the encoder reports shape overflows to.
func (e *Encoder) WithLogger(l zerolog.Logger) *Encoder {
	e.logger = l
	return e
}

func (e *Encoder) Shape() Shape { return e.shape }

// Encode builds the observation for the player who must decide next, or
// for the agent's seat when nothing is pending.
func (e *Encoder) Encode(src Source) (*Observation, error) {
	viewer := src.Seat()
	d := src.Pending()
	if d != nil {
		viewer = d.Player
	}
	o := &Observation{
		Shape:   e.shape,
		Viewer:  viewer,
		Cards:   make([]uint8, e.shape.MaxCards*CardFeatures),
		Global:  make([]uint8, GlobalFeatures),
		Actions: make([]uint8, e.shape.MaxOptions*ActionFeatures),
		History: make([]uint8, e.shape.NHistoryActions*ActionFeatures),
	}
	slots, err := e.encodeCards(o, src, viewer)
	if err != nil {
		return nil, err
	}
	encodeGlobal(o, src, viewer, d)
	if d != nil {
		for i, opt := range d.Options {
			if i >= e.shape.MaxOptions {
				break
			}
			encodeAction(o.ActionRow(i), d.Msg, opt, func(sp codec.Spec) (uint8, uint16) {
				slot, ok := slots[sp.Code()]
				if !ok {
					return 0, 0
				}
				row := o.CardRow(slot - 1)
				return uint8(slot), uint16(row[0])<<8 | uint16(row[1])
			})
		}
	}
	store := src.Store()
	hist := src.History(viewer)
	if len(hist) > e.shape.NHistoryActions {
		hist = hist[len(hist)-e.shape.NHistoryActions:]
	}
	for i, a := range hist {
		id := cardID(store, a.Code)
		encodeAction(o.HistoryRow(i), a.Msg, a.Option, func(codec.Spec) (uint8, uint16) { return 0, id })
	}
	return o, nil
}

// encodeCards fills the card rows and returns the 1-based row of every
// card keyed by its spec as the viewer names it.
func (e *Encoder) encodeCards(o *Observation, src Source, viewer uint8) (map[codec.SpecCode]int, error) {
	store := src.Store()
	slots := make(map[codec.SpecCode]int)
	n, dropped := 0, 0
	put := func(q wire.CardQuery, opponent bool, sp codec.Spec, overlay bool) {
		if n >= e.shape.MaxCards {
			dropped++
			return
		}
		encodeCard(o.CardRow(n), store, q, opponent, overlay)
		n++
		slots[sp.Code()] = n
	}
	for _, player := range [2]uint8{viewer, 1 - viewer} {
		opponent := player != viewer
		for _, loc := range zoneOrder {
			qs, err := src.FieldCards(player, loc, cardQueryFlags)
			if err != nil {
				return nil, err
			}
			for _, q := range qs {
				if q.Empty {
					continue
				}
				seq := q.Sequence
				q.Location = loc
				put(q, opponent, codec.Spec{Location: loc, Sequence: seq, Opponent: opponent}, false)
				if loc != core.LocationMZone {
					continue
				}
				for k, code := range q.Overlay {
					m := wire.CardQuery{Code: code, Location: loc | core.LocationOverlay, Sequence: seq}
					if c, err := store.Card(code); err == nil {
						m.Type, m.Level, m.Attribute, m.Race = c.Type, c.Level, c.Attribute, c.Race
						m.Attack, m.Defense = c.Attack, c.Defense
					}
					put(m, opponent, codec.Spec{Location: loc | core.LocationOverlay, Sequence: seq, Overlay: uint8(k), Opponent: opponent}, true)
				}
			}
		}
	}
	if dropped > 0 {
		// Options naming a dropped card encode slot 0.
		e.overflow.Do(func() {
			e.logger.Warn().Int("max_cards", e.shape.MaxCards).Int("dropped", dropped).
				Msg("board exceeds the observation shape, cards dropped")
		})
	}
	return slots, nil
}

func hidden(loc, pos uint8, opponent bool) bool {
	switch {
	case loc == core.LocationDeck:
		return true
	case !opponent:
		return false
	case loc == core.LocationHand, loc == core.LocationExtra:
		return true
	case loc&core.LocationOnField != 0 && loc&core.LocationOverlay == 0:
		return pos&core.PosFaceDown != 0
	}
	return false
}

func cardID(store *carddb.Store, code uint32) uint16 {
	if code == 0 {
		return 0
	}
	id, err := store.ID(code)
	if err != nil {
		// Tokens and other cards created mid-duel are outside the code list.
		return 0
	}
	return id
}

func encodeCard(row []uint8, store *carddb.Store, q wire.CardQuery, opponent, overlay bool) {
	row[2] = codec.LocationID(q.Location)
	row[3] = q.Sequence
	row[4] = flag(opponent)
	if !overlay {
		row[5] = codec.PositionID(q.Position)
	}
	row[6] = flag(overlay)
	if hidden(q.Location, q.Position, opponent) {
		return
	}

	id := cardID(store, q.Code)
	row[0], row[1] = uint8(id>>8), uint8(id)
	row[7] = codec.AttributeID(q.Attribute)
	row[8] = codec.RaceID(q.Race)
	level := q.Level & 0xff
	if q.Rank&0xff > 0 {
		level = q.Rank & 0xff
	}
	if q.LinkRating&0xff > 0 {
		level = q.LinkRating & 0xff
	}
	row[9] = uint8(level)
	row[10], row[11] = codec.ValueTransform(int(max(q.Attack, 0)))
	row[12], row[13] = codec.ValueTransform(int(max(q.Defense, 0)))
	types := codec.TypeVector(q.Type)
	copy(row[14:], types[:])
}

func encodeGlobal(o *Observation, src Source, viewer uint8, d *duel.PendingDecision) {
	g := o.Global
	g[0], g[1] = codec.ValueTransform(int(max(src.LP(viewer), 0)))
	g[2], g[3] = codec.ValueTransform(int(max(src.LP(1-viewer), 0)))
	g[4] = codec.PhaseID(src.Phase())
	g[5] = flag(src.FirstPlayer() == viewer)
	g[6] = flag(src.TurnPlayer() == viewer)
	g[7] = flag(d == nil || len(d.Options) == 0)
}

// Cancel/finish feature values.
const (
	cancelOption = 1
	finishOption = 2
)

// encodeAction writes one action row. lookup resolves the option's first
// spec to a card slot and id.
func encodeAction(row []uint8, msg core.Msg, opt string, lookup func(codec.Spec) (slot uint8, id uint16)) {
	row[3] = codec.MsgID(msg)
	if sp, suffix, ok := duel.OptionSpec(msg, opt); ok {
		slot, id := lookup(sp)
		row[0] = slot
		row[1], row[2] = uint8(id>>8), uint8(id)
		row[11] = uint8(suffix)
		row[12] = codec.LocationID(sp.Location)
		row[13] = sp.Sequence
		row[14] = flag(sp.Opponent)
	}
	row[10] = uint8(duel.SpecCount(msg, opt))
	if opt == "" {
		return
	}

	switch msg {
	case core.MsgSelectIdleCmd, core.MsgSelectBattleCmd:
		if len(opt) == 1 {
			row[6] = codec.CmdPhaseID(opt[0])
		} else {
			row[4] = codec.CmdActID(opt[0])
		}
	case core.MsgSelectYesNo, core.MsgSelectEffectYN:
		row[5] = codec.YesNoID(opt[0])
	case core.MsgSelectChain:
		if opt == "c" {
			row[7] = cancelOption
		}
	case core.MsgSelectUnselect:
		if opt == "f" {
			row[7] = finishOption
		}
	case core.MsgSelectPosition:
		if n, err := strconv.Atoi(opt); err == nil && n >= 1 && n <= 4 {
			row[8] = codec.PositionID(1 << (n - 1))
		}
	case core.MsgSelectOption:
		if n, err := strconv.Atoi(opt); err == nil {
			row[9] = uint8(n)
		}
	}
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
