// Package carddb holds the static card catalog: display data, the raw
// records handed to the engine, the dense card ids used in tensors, and the
// named decks. A Store is built once and is read-only afterwards.
package carddb

import (
	"fmt"
	"strings"

	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
)

// Card is a value snapshot of one card: catalog fields plus the board
// position it was seen at. Copies are independent.
type Card struct {
	Code       uint32
	Alias      uint32
	Setcode    uint64
	Type       uint32
	Level      uint32
	LScale     uint32
	RScale     uint32
	Attack     int32
	Defense    int32
	Race       uint32
	Attribute  uint32
	LinkMarker uint32

	Name    string
	Desc    string
	Strings []string

	controller uint8
	location   uint8
	sequence   uint8
	position   uint8
}

// SetLocation unpacks a location word {controller, location, sequence, position}.
func (c *Card) SetLocation(packed uint32) {
	c.controller = uint8(packed)
	c.location = uint8(packed >> 8)
	c.sequence = uint8(packed >> 16)
	c.position = uint8(packed >> 24)
}

// Place sets the board position directly.
func (c *Card) Place(controller, location, sequence, position uint8) {
	c.controller, c.location, c.sequence, c.position = controller, location, sequence, position
}

// SetPosition changes only the position byte.
func (c *Card) SetPosition(pos uint8) { c.position = pos }

func (c Card) Controller() uint8 { return c.controller }
func (c Card) Location() uint8   { return c.location }
func (c Card) Sequence() uint8   { return c.sequence }
func (c Card) Position() uint8   { return c.position }

// Spec returns the card's spec as seen by viewer.
func (c Card) Spec(viewer uint8) string {
	return codec.FormatSpec(c.location, c.sequence, c.position, c.controller != viewer)
}

// SpecCode returns the packed spec as seen by viewer.
func (c Card) SpecCode(viewer uint8) codec.SpecCode {
	return codec.Spec{
		Location: c.location,
		Sequence: c.sequence,
		Overlay:  c.position,
		Opponent: c.controller != viewer,
	}.Code()
}

// PositionName describes the card's battle position.
func (c Card) PositionName() string {
	return codec.PositionName(c.position)
}

func (c Card) IsLink() bool    { return c.Type&core.TypeLink != 0 }
func (c Card) IsMonster() bool { return c.Type&core.TypeMonster != 0 }

// Stats formats ATK/DEF, or ATK alone for link monsters.
func (c Card) Stats() string {
	if c.IsLink() {
		return fmt.Sprintf("%d", c.Attack)
	}
	return fmt.Sprintf("%d/%d", c.Attack, c.Defense)
}

// Text returns the card's i-th effect string, or "" when out of range.
func (c Card) Text(i int) string {
	if i < 0 || i >= len(c.Strings) {
		return ""
	}
	return strings.TrimLeft(c.Strings[i], " \t\r\n")
}

// Data returns the record the engine's card reader expects.
func (c Card) Data() core.CardData {
	return core.CardData{
		Code:       c.Code,
		Alias:      c.Alias,
		Setcode:    c.Setcode,
		Type:       c.Type,
		Level:      c.Level,
		Attribute:  c.Attribute,
		Race:       c.Race,
		Attack:     c.Attack,
		Defense:    c.Defense,
		LScale:     c.LScale,
		RScale:     c.RScale,
		LinkMarker: c.LinkMarker,
	}
}

// fromLevelWord splits the packed datas.level column and moves the link
// marker out of the defense column.
func (c *Card) fromLevelWord(level uint32) {
	c.Level = level & 0xff
	c.LScale = (level >> 24) & 0xff
	c.RScale = (level >> 16) & 0xff
	if c.IsLink() {
		c.LinkMarker = uint32(c.Defense)
		c.Defense = 0
	}
}
