package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/ygoenv/internal/core"
)

func TestReaderLittleEndian(t *testing.T) {
	buf := NewBuilder().U8(7).U16(0x0102).U32(0xdeadbeef).I32(-2).Bytes()
	r := NewReader(buf)

	assert.Equal(t, uint8(7), r.U8())
	assert.Equal(t, uint16(0x0102), r.U16())
	assert.Equal(t, uint32(0xdeadbeef), r.U32())
	assert.Equal(t, int32(-2), r.I32())
	assert.True(t, r.Done())
	assert.NoError(t, r.Err())
}

func TestReaderOverrunIsSticky(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	r.U8()
	assert.Equal(t, uint32(0), r.U32())
	require.ErrorIs(t, r.Err(), ErrShortBuffer)

	off := r.Offset()
	assert.Equal(t, uint8(0), r.U8())
	assert.Equal(t, off, r.Offset())
	assert.False(t, r.Done())
}

func TestReaderSkip(t *testing.T) {
	r := NewReader(make([]byte, 10))
	r.Skip(4)
	assert.Equal(t, 6, r.Len())
	r.SkipToEnd()
	assert.True(t, r.Done())

	r.Reset([]byte{9})
	assert.Equal(t, 0, r.Offset())
	assert.Equal(t, uint8(9), r.U8())
	r.Skip(1)
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestQueryRoundTrip(t *testing.T) {
	flags := core.QueryCode | core.QueryPosition | core.QueryLevel | core.QueryRank |
		core.QueryAttack | core.QueryDefense | core.QueryOverlayCard |
		core.QueryLScale | core.QueryRScale | core.QueryLink
	in := CardQuery{
		Code:       89631139,
		Controller: 1,
		Location:   core.LocationMZone,
		Sequence:   2,
		Position:   core.PosFaceUpAttack,
		Level:      8,
		Attack:     3000,
		Defense:    2500,
		Overlay:    []uint32{1, 2},
	}

	b := NewBuilder()
	AppendQuery(b, in, flags)
	AppendQuery(b, CardQuery{Empty: true}, flags)

	got, err := ParseQueries(b.Bytes())
	require.NoError(t, err)
	require.Len(t, got, 2)

	q := got[0]
	assert.Equal(t, flags, q.Flags)
	assert.Equal(t, in.Code, q.Code)
	assert.Equal(t, uint32(1)|uint32(core.LocationMZone)<<8|2<<16|uint32(core.PosFaceUpAttack)<<24, q.PackedLocation())
	assert.Equal(t, uint32(8), q.Level)
	assert.Equal(t, int32(3000), q.Attack)
	assert.Equal(t, int32(2500), q.Defense)
	assert.Equal(t, []uint32{1, 2}, q.Overlay)
	assert.True(t, got[1].Empty)
}

func TestQueryLengthMismatch(t *testing.T) {
	b := NewBuilder()
	AppendQuery(b, CardQuery{Code: 1}, core.QueryCode)
	buf := b.Bytes()
	buf[0] = 16 // claim more than the single code field

	_, err := ParseQuery(NewReader(append(buf, make([]byte, 4)...)))
	assert.True(t, errors.Is(err, ErrRecordLength))
}

func TestQueryTruncated(t *testing.T) {
	b := NewBuilder()
	AppendQuery(b, CardQuery{Code: 1, Attack: 100}, core.QueryCode|core.QueryAttack)
	buf := b.Bytes()

	_, err := ParseQuery(NewReader(buf[:len(buf)-2]))
	assert.ErrorIs(t, err, ErrShortBuffer)
}
