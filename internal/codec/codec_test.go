package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/ygoenv/internal/core"
)

var zones = []uint8{
	core.LocationDeck, core.LocationHand, core.LocationMZone, core.LocationSZone,
	core.LocationGrave, core.LocationRemoved, core.LocationExtra,
	core.LocationMZone | core.LocationOverlay,
}

func TestSpecRoundTrip(t *testing.T) {
	for _, loc := range zones {
		for seq := uint8(0); seq < 12; seq++ {
			for _, opp := range []bool{false, true} {
				var overlays []uint8
				if loc&core.LocationOverlay != 0 {
					overlays = []uint8{0, 1, 4}
				} else {
					overlays = []uint8{0}
				}
				for _, ov := range overlays {
					in := Spec{Location: loc, Sequence: seq, Overlay: ov, Opponent: opp}
					s := in.String()

					got, err := ParseSpec(s)
					require.NoError(t, err, s)
					assert.Equal(t, in, got, s)

					code, err := ParseSpecCode(s)
					require.NoError(t, err)
					assert.Equal(t, s, code.String())
					assert.Equal(t, in.Code(), code)
				}
			}
		}
	}
}

func TestFormatSpec(t *testing.T) {
	assert.Equal(t, "m3", FormatSpec(core.LocationMZone, 2, 0, false))
	assert.Equal(t, "os2", FormatSpec(core.LocationSZone, 1, 0, true))
	assert.Equal(t, "m1#2", FormatSpec(core.LocationMZone|core.LocationOverlay, 0, 1, false))
	assert.Equal(t, "om4#1", FormatSpec(core.LocationMZone|core.LocationOverlay, 3, 0, true))
	assert.Equal(t, "12", FormatSpec(core.LocationDeck, 11, 0, false))
	assert.Equal(t, "h5", FormatSpec(core.LocationHand, 4, 7, false), "position byte ignored outside overlay")
}

func TestParseSpecLegacyDeck(t *testing.T) {
	sp, err := ParseSpec("7")
	require.NoError(t, err)
	assert.Equal(t, core.LocationDeck, sp.Location)
	assert.Equal(t, uint8(6), sp.Sequence)
	assert.False(t, sp.Opponent)
}

func TestParseSpecErrors(t *testing.T) {
	for _, s := range []string{"", "o", "q1", "m", "m0", "m1x", "m1#", "g1#0"} {
		_, err := ParseSpec(s)
		assert.ErrorIs(t, err, ErrBadSpec, s)
	}
}

func TestSpecCodeLayout(t *testing.T) {
	code := Spec{Location: core.LocationSZone, Sequence: 3, Overlay: 0, Opponent: true}.Code()
	assert.Equal(t, SpecCode(1|uint32(core.LocationSZone)<<8|3<<16), code)
	assert.Equal(t, "os4", code.String())
}

func TestSplitChainSuffix(t *testing.T) {
	cases := []struct {
		in     string
		spec   string
		suffix int
	}{
		{"m1", "m1", 0},
		{"m1a", "m1", 1},
		{"os3b", "os3", 2},
		{"c", "c", 0},
		{"12", "12", 0},
	}
	for _, c := range cases {
		spec, suffix := SplitChainSuffix(c.in)
		assert.Equal(t, c.spec, spec, c.in)
		assert.Equal(t, c.suffix, suffix, c.in)
	}
}

func TestUsableSpecs(t *testing.T) {
	// Every zone except own m1 and opponent s8 unavailable.
	flag := ^uint32(0) &^ 0x1 &^ (0x80 << 24)
	assert.Equal(t, []string{"m1", "os8"}, UsableSpecs(flag, false))

	// Reversed: set bits are the usable ones.
	assert.Equal(t, []string{"s2", "om3"}, UsableSpecs(0x2<<8|0x4<<16, true))
	assert.Len(t, UsableSpecs(0, false), 32)
}

func TestIDTables(t *testing.T) {
	assert.Equal(t, uint8(1), LocationID(core.LocationDeck))
	assert.Equal(t, uint8(3), LocationID(core.LocationMZone))
	assert.Equal(t, uint8(3), LocationID(core.LocationMZone|core.LocationOverlay))
	assert.Equal(t, uint8(7), LocationID(core.LocationExtra))

	assert.Equal(t, uint8(0), PositionID(core.PosNone))
	assert.Equal(t, uint8(1), PositionID(core.PosFaceUpAttack))
	assert.Equal(t, uint8(4), PositionID(core.PosFaceUpDefense))
	assert.Equal(t, uint8(6), PositionID(core.PosFaceDownDefense))
	assert.Equal(t, uint8(8), PositionID(core.PosDefense))

	assert.Equal(t, uint8(0), AttributeID(core.AttributeNone))
	assert.Equal(t, uint8(7), AttributeID(core.AttributeDivine))
	assert.Equal(t, uint8(26), RaceID(core.RaceIllusion))
	assert.Equal(t, uint8(0), PhaseID(core.PhaseDraw))
	assert.Equal(t, uint8(9), PhaseID(core.PhaseEnd))

	assert.Equal(t, uint8(1), MsgID(core.MsgSelectIdleCmd))
	assert.Equal(t, uint8(11), MsgID(core.MsgSelectPlace))
	assert.Equal(t, MsgID(core.MsgSelectPlace), MsgID(core.MsgSelectDisfield))
	assert.Equal(t, uint8(0), MsgID(core.MsgDraw))

	assert.Equal(t, uint8(1), CmdActID('t'))
	assert.Equal(t, uint8(7), CmdActID('a'))
	assert.Equal(t, uint8(2), CmdPhaseID('m'))
	assert.Equal(t, uint8(2), YesNoID('n'))
}

func TestTypeVector(t *testing.T) {
	v := TypeVector(core.TypeMonster | core.TypeEffect | core.TypeLink)
	assert.Equal(t, uint8(1), v[0])
	assert.Equal(t, uint8(1), v[4])
	assert.Equal(t, uint8(1), v[24])
	var n int
	for _, b := range v {
		n += int(b)
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Monster", "Effect", "Link"}, TypeNames(core.TypeMonster|core.TypeEffect|core.TypeLink))
}

func TestValueTransform(t *testing.T) {
	hi, lo := ValueTransform(3000)
	assert.Equal(t, uint8(11), hi)
	assert.Equal(t, uint8(184), lo)

	hi, lo = ValueTransform(65536 + 5)
	assert.Equal(t, uint8(0), hi)
	assert.Equal(t, uint8(5), lo)
}

func TestWinReason(t *testing.T) {
	assert.Equal(t, "LP reached 0", WinReason(1))
	assert.Equal(t, "Unknown", WinReason(9))
}
