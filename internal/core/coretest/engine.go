// Package coretest provides a scripted stand-in for the rule engine.
//
// Tests queue message batches; each Process call hands out the next one.
// Cards placed on the board answer QueryCard and QueryFieldCard the way the
// engine does, and every response is recorded for inspection.
package coretest

import (
	"cmp"
	"slices"

	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

// Response is one SetResponseI or SetResponseB call.
type Response struct {
	Value int32
	Buf   []byte // nil for integer responses
}

// PlayerInfo records a SetPlayerInfo call.
type PlayerInfo struct {
	LP, StartCount, DrawCount int32
}

// NewCard records a NewCard call.
type NewCard struct {
	Code                         uint32
	Owner, Player                uint8
	Location, Sequence, Position uint8
}

type slot struct {
	player, location, sequence uint8
}

// fieldSlots is how many records query_field_card writes for the zones the
// engine reports slot by slot, empty slots included.
var fieldSlots = map[uint8]int{
	core.LocationMZone: 7,
	core.LocationSZone: 8,
}

// Engine implements core.Engine from a script.
type Engine struct {
	Seed      uint32
	Options   uint32
	Players   [2]PlayerInfo
	Cards     []NewCard
	Responses []Response
	Started   bool
	Ended     bool
	Created   int

	// OnResponse, when set, runs after every response and may queue the
	// engine's reaction to it.
	OnResponse func(e *Engine, r Response)

	batches [][]byte
	pending []byte
	board   map[slot]wire.CardQuery

	cardReader   core.CardReader
	scriptReader core.ScriptReader
}

// New returns an engine with an empty board and no queued messages.
func New() *Engine {
	return &Engine{board: make(map[slot]wire.CardQuery)}
}

// Queue appends message batches. Each batch is what one GetMessage returns.
func (e *Engine) Queue(batches ...[]byte) {
	e.batches = append(e.batches, batches...)
}

// Remaining reports how many batches have not been processed yet.
func (e *Engine) Remaining() int { return len(e.batches) }

// Place puts a card on the board. Controller, Location and Sequence are
// taken from q; Flags is ignored.
func (e *Engine) Place(q wire.CardQuery) {
	e.board[slot{q.Controller, q.Location, q.Sequence}] = q
}

// Remove clears a board slot.
func (e *Engine) Remove(player, location, sequence uint8) {
	delete(e.board, slot{player, location, sequence})
}

// LastResponse returns the most recent response, or false if none was set.
func (e *Engine) LastResponse() (Response, bool) {
	if len(e.Responses) == 0 {
		return Response{}, false
	}
	return e.Responses[len(e.Responses)-1], true
}

// ReadScript calls the installed script reader.
func (e *Engine) ReadScript(name string) []byte {
	if e.scriptReader == nil {
		return nil
	}
	return e.scriptReader(name)
}

func (e *Engine) SetCardReader(r core.CardReader)     { e.cardReader = r }
func (e *Engine) SetScriptReader(r core.ScriptReader) { e.scriptReader = r }

func (e *Engine) CreateDuel(seed uint32) core.Duel {
	e.Seed = seed
	e.Created++
	return core.Duel(e.Created)
}

func (e *Engine) StartDuel(_ core.Duel, options uint32) {
	e.Options = options
	e.Started = true
}

func (e *Engine) EndDuel(core.Duel) { e.Ended = true }

func (e *Engine) SetPlayerInfo(_ core.Duel, player, lp, startCount, drawCount int32) {
	e.Players[player] = PlayerInfo{LP: lp, StartCount: startCount, DrawCount: drawCount}
}

// NewCard records the call and places the card at the top of its zone,
// filling stats from the card reader when one is installed.
func (e *Engine) NewCard(_ core.Duel, code uint32, owner, player, location, sequence, position uint8) {
	e.Cards = append(e.Cards, NewCard{code, owner, player, location, sequence, position})
	if location == core.LocationDeck || location == core.LocationExtra {
		sequence = uint8(e.QueryFieldCount(0, player, location))
	}
	q := wire.CardQuery{
		Code:       code,
		Controller: player,
		Location:   location,
		Sequence:   sequence,
		Position:   position,
		Owner:      uint32(owner),
	}
	if e.cardReader != nil {
		if data, ok := e.cardReader(code); ok {
			q.Type = data.Type
			q.Level = data.Level
			q.Attribute = data.Attribute
			q.Race = data.Race
			q.Attack = data.Attack
			q.Defense = data.Defense
			q.LScale = data.LScale
			q.RScale = data.RScale
			if data.Type&core.TypeLink != 0 {
				q.LinkRating = data.Level
				q.LinkMarker = data.LinkMarker
			}
		}
	}
	e.Place(q)
}

// Process hands out the next batch. With nothing left it reports the end of
// processing and an empty message buffer.
func (e *Engine) Process(core.Duel) uint32 {
	if len(e.batches) == 0 {
		e.pending = nil
		return core.ProcessEnd
	}
	e.pending = e.batches[0]
	e.batches = e.batches[1:]
	return 0
}

func (e *Engine) GetMessage(_ core.Duel, buf []byte) int {
	n := copy(buf, e.pending)
	e.pending = nil
	return n
}

func (e *Engine) QueryCard(_ core.Duel, player, location, sequence uint8, flags uint32, buf []byte, _ bool) int {
	b := wire.NewBuilder()
	q, ok := e.board[slot{player, location, sequence}]
	if !ok {
		q = wire.CardQuery{Empty: true}
	}
	wire.AppendQuery(b, q, flags)
	return copy(buf, b.Bytes())
}

func (e *Engine) QueryFieldCount(_ core.Duel, player, location uint8) int {
	n := 0
	for s := range e.board {
		if s.player == player && s.location == location {
			n++
		}
	}
	return n
}

func (e *Engine) QueryFieldCard(_ core.Duel, player, location uint8, flags uint32, buf []byte, _ bool) int {
	b := wire.NewBuilder()
	if n, ok := fieldSlots[location]; ok {
		for seq := 0; seq < n; seq++ {
			q, ok := e.board[slot{player, location, uint8(seq)}]
			if !ok {
				q = wire.CardQuery{Empty: true}
			}
			wire.AppendQuery(b, q, flags)
		}
		return copy(buf, b.Bytes())
	}

	var cards []wire.CardQuery
	for s, q := range e.board {
		if s.player == player && s.location == location {
			cards = append(cards, q)
		}
	}
	slices.SortFunc(cards, func(a, b wire.CardQuery) int { return cmp.Compare(a.Sequence, b.Sequence) })
	for _, q := range cards {
		wire.AppendQuery(b, q, flags)
	}
	return copy(buf, b.Bytes())
}

func (e *Engine) SetResponseI(_ core.Duel, v int32) {
	e.respond(Response{Value: v})
}

func (e *Engine) SetResponseB(_ core.Duel, buf []byte) {
	e.respond(Response{Buf: slices.Clone(buf)})
}

func (e *Engine) respond(r Response) {
	e.Responses = append(e.Responses, r)
	if e.OnResponse != nil {
		e.OnResponse(e, r)
	}
}

var _ core.Engine = (*Engine)(nil)
