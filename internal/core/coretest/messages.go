package coretest

import (
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

// Msg starts a message with the given tag.
func Msg(tag core.Msg) *wire.Builder {
	return wire.NewBuilder().U8(uint8(tag))
}

// Batch concatenates messages into one GetMessage buffer.
func Batch(msgs ...*wire.Builder) []byte {
	var out []byte
	for _, m := range msgs {
		out = append(out, m.Bytes()...)
	}
	return out
}

func NewTurn(player uint8) *wire.Builder {
	return Msg(core.MsgNewTurn).U8(player)
}

func NewPhase(phase uint16) *wire.Builder {
	return Msg(core.MsgNewPhase).U16(phase)
}

func Win(player, reason uint8) *wire.Builder {
	return Msg(core.MsgWin).U8(player).U8(reason)
}

func Draw(player uint8, codes ...uint32) *wire.Builder {
	b := Msg(core.MsgDraw).U8(player).U8(uint8(len(codes)))
	for _, c := range codes {
		b.U32(c)
	}
	return b
}

func Damage(player uint8, amount uint32) *wire.Builder {
	return Msg(core.MsgDamage).U8(player).U32(amount)
}

// YesNo is MSG_SELECT_YESNO.
func YesNo(player uint8, desc uint32) *wire.Builder {
	return Msg(core.MsgSelectYesNo).U8(player).U32(desc)
}

// Option is MSG_SELECT_OPTION with one description per choice.
func Option(player uint8, descs ...uint32) *wire.Builder {
	b := Msg(core.MsgSelectOption).U8(player).U8(uint8(len(descs)))
	for _, d := range descs {
		b.U32(d)
	}
	return b
}

// Place is MSG_SELECT_PLACE.
func Place(player, count uint8, flag uint32) *wire.Builder {
	return Msg(core.MsgSelectPlace).U8(player).U8(count).U32(flag)
}

// Position is MSG_SELECT_POSITION.
func Position(player uint8, code uint32, positions uint8) *wire.Builder {
	return Msg(core.MsgSelectPosition).U8(player).U32(code).U8(positions)
}
