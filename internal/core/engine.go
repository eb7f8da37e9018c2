// Package core describes the boundary to the rule engine (ygopro-core).
//
// The engine is consumed as an opaque service through the small set of calls
// in Engine. Everything on the other side of it, card effects and rule
// processing, is out of reach of this module.
package core

import (
	"errors"
	"fmt"
)

// Duel is an engine-owned duel handle.
type Duel uintptr

// CardData is the static record the engine asks for through the card reader.
type CardData struct {
	Code       uint32
	Alias      uint32
	Setcode    uint64
	Type       uint32
	Level      uint32
	Attribute  uint32
	Race       uint32
	Attack     int32
	Defense    int32
	LScale     uint32
	RScale     uint32
	LinkMarker uint32
}

// CardReader resolves a card code for the engine. It reports false for an
// unknown code.
type CardReader func(code uint32) (CardData, bool)

// ScriptReader returns the bytes of the named card script, or nil when the
// script does not exist.
type ScriptReader func(name string) []byte

// Engine is the C-style call surface of the rule engine.
//
// Buffers follow the engine's conventions: GetMessage fills buf with one or
// more concatenated messages and returns the byte count; QueryCard and
// QueryFieldCard fill buf with length-prefixed card records.
type Engine interface {
	SetCardReader(r CardReader)
	SetScriptReader(r ScriptReader)

	CreateDuel(seed uint32) Duel
	StartDuel(d Duel, options uint32)
	EndDuel(d Duel)
	SetPlayerInfo(d Duel, player, lp, startCount, drawCount int32)
	NewCard(d Duel, code uint32, owner, player, location, sequence, position uint8)

	Process(d Duel) uint32
	GetMessage(d Duel, buf []byte) int
	QueryCard(d Duel, player, location, sequence uint8, flags uint32, buf []byte, useCache bool) int
	QueryFieldCount(d Duel, player, location uint8) int
	QueryFieldCard(d Duel, player, location uint8, flags uint32, buf []byte, useCache bool) int

	SetResponseI(d Duel, v int32)
	SetResponseB(d Duel, buf []byte)
}

// Buffer sizes matching the engine's own limits.
const (
	MessageBufferSize  = 0x1000
	QueryBufferSize    = 0x4000
	ResponseBufferSize = 64
)

// PadResponse copies a byte response into the fixed block the engine reads.
func PadResponse(buf []byte) ([ResponseBufferSize]byte, error) {
	var block [ResponseBufferSize]byte
	if len(buf) > ResponseBufferSize {
		return block, fmt.Errorf("response of %d bytes exceeds %d", len(buf), ResponseBufferSize)
	}
	copy(block[:], buf)
	return block, nil
}

// ErrNoEngine is returned by Default in builds without the ocgcore tag.
var ErrNoEngine = errors.New("built without the rule engine, rebuild with -tags ocgcore")
