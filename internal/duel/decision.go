package duel

import (
	"fmt"

	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
)

// Response is what gets sent back to the engine: an integer, or a buffer
// when Buf is non-nil.
type Response struct {
	Value int32
	Buf   []byte
}

// PendingDecision is a decision message waiting for an option index.
// Options and Responder are built together, so option i always maps to the
// response Responder derives from i.
type PendingDecision struct {
	Msg       core.Msg
	Player    uint8
	Options   []string
	Responder Responder
}

// Respond maps an option index to the engine response.
func (d *PendingDecision) Respond(idx int) (Response, error) {
	if idx < 0 || idx >= len(d.Options) {
		return Response{}, fmt.Errorf("%w: option %d of %d for %s", ErrDesync, idx, len(d.Options), d.Msg)
	}
	return d.Responder.respond(idx)
}

// Responder turns an option index into a response. The set of variants is
// closed; each decision message picks the one matching its reply format.
type Responder interface {
	respond(idx int) (Response, error)
}

// Packed answers with a precomputed word per option, as the idle and battle
// command menus do ((index<<16)|tag, or a bare phase code).
type Packed struct {
	Values []int32
}

func (p Packed) respond(idx int) (Response, error) {
	if idx >= len(p.Values) {
		return Response{}, fmt.Errorf("%w: packed option %d", ErrDesync, idx)
	}
	return Response{Value: p.Values[idx]}, nil
}

// Subset answers with a count byte followed by the chosen card indices.
type Subset struct {
	Sets [][]int
}

func (s Subset) respond(idx int) (Response, error) {
	if idx >= len(s.Sets) {
		return Response{}, fmt.Errorf("%w: subset option %d", ErrDesync, idx)
	}
	set := s.Sets[idx]
	buf := make([]byte, 0, len(set)+1)
	buf = append(buf, uint8(len(set)))
	for _, i := range set {
		buf = append(buf, uint8(i))
	}
	return Response{Buf: buf}, nil
}

// Cancelable answers with the option index for the first N options and
// with -1 for the trailing cancel option, if there is one.
type Cancelable struct {
	N      int
	Cancel bool
}

func (c Cancelable) respond(idx int) (Response, error) {
	switch {
	case idx < c.N:
		return Response{Value: int32(idx)}, nil
	case idx == c.N && c.Cancel:
		return Response{Value: -1}, nil
	}
	return Response{}, fmt.Errorf("%w: option %d beyond %d choices", ErrDesync, idx, c.N)
}

// SelectUnselect answers a card pick with the buffer {1, index} and the
// trailing finish option with -1.
type SelectUnselect struct {
	N      int
	Finish bool
}

func (s SelectUnselect) respond(idx int) (Response, error) {
	switch {
	case idx < s.N:
		return Response{Buf: []byte{1, uint8(idx)}}, nil
	case idx == s.N && s.Finish:
		return Response{Value: -1}, nil
	}
	return Response{}, fmt.Errorf("%w: option %d beyond %d cards", ErrDesync, idx, s.N)
}

// YesNo answers 1 for the first option and 0 for the second.
type YesNo struct{}

func (YesNo) respond(idx int) (Response, error) {
	switch idx {
	case 0:
		return Response{Value: 1}, nil
	case 1:
		return Response{Value: 0}, nil
	}
	return Response{}, fmt.Errorf("%w: yes/no option %d", ErrDesync, idx)
}

// PositionBitmask answers with the position bit behind each option.
type PositionBitmask struct {
	Positions []uint8
}

func (p PositionBitmask) respond(idx int) (Response, error) {
	if idx >= len(p.Positions) {
		return Response{}, fmt.Errorf("%w: position option %d", ErrDesync, idx)
	}
	return Response{Value: int32(p.Positions[idx])}, nil
}

// ZonePlacement answers with {player, location, sequence} for the zone spec
// behind each option. Specs prefixed with 'o' belong to the other player.
type ZonePlacement struct {
	Player uint8
	Zones  []string
}

func (z ZonePlacement) respond(idx int) (Response, error) {
	if idx >= len(z.Zones) {
		return Response{}, fmt.Errorf("%w: zone option %d", ErrDesync, idx)
	}
	sp, err := codec.ParseSpec(z.Zones[idx])
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	player := z.Player
	if sp.Opponent {
		player = 1 - player
	}
	return Response{Buf: []byte{player, sp.Location, sp.Sequence}}, nil
}
