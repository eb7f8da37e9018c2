package coretest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/wire"
)

func TestProcessHandsOutBatches(t *testing.T) {
	e := New()
	e.Queue(Batch(NewTurn(0), NewPhase(core.PhaseDraw)), Batch(Win(1, 1)))
	buf := make([]byte, core.MessageBufferSize)

	assert.Zero(t, e.Process(0))
	n := e.GetMessage(0, buf)
	assert.Equal(t, []byte{uint8(core.MsgNewTurn), 0, uint8(core.MsgNewPhase), 1, 0}, buf[:n])

	assert.Zero(t, e.Process(0))
	assert.Equal(t, 3, e.GetMessage(0, buf))

	assert.Equal(t, uint32(core.ProcessEnd), e.Process(0)&core.ProcessEnd)
	assert.Zero(t, e.GetMessage(0, buf))
}

func TestQueryCard(t *testing.T) {
	e := New()
	e.Place(wire.CardQuery{Code: 89631139, Controller: 1, Location: core.LocationMZone, Sequence: 2,
		Position: core.PosFaceUpAttack, Attack: 3000, Defense: 2500, Level: 8})
	buf := make([]byte, core.QueryBufferSize)
	flags := core.QueryCode | core.QueryPosition | core.QueryAttack | core.QueryLevel

	n := e.QueryCard(0, 1, core.LocationMZone, 2, flags, buf, false)
	q, err := wire.ParseQuery(wire.NewReader(buf[:n]))
	require.NoError(t, err)
	assert.Equal(t, uint32(89631139), q.Code)
	assert.Equal(t, int32(3000), q.Attack)
	assert.Equal(t, uint8(2), q.Sequence)

	n = e.QueryCard(0, 0, core.LocationMZone, 2, flags, buf, false)
	assert.Equal(t, core.LenEmpty, n)
}

func TestQueryFieldCardSlots(t *testing.T) {
	e := New()
	e.Place(wire.CardQuery{Code: 1, Location: core.LocationMZone, Sequence: 3})
	e.NewCard(0, 10, 0, 0, core.LocationDeck, 0, core.PosFaceDownDefense)
	e.NewCard(0, 11, 0, 0, core.LocationDeck, 0, core.PosFaceDownDefense)
	buf := make([]byte, core.QueryBufferSize)

	n := e.QueryFieldCard(0, 0, core.LocationMZone, core.QueryCode, buf, false)
	qs, err := wire.ParseQueries(buf[:n])
	require.NoError(t, err)
	require.Len(t, qs, 7)
	for i, q := range qs {
		assert.Equal(t, i != 3, q.Empty, "slot %d", i)
	}

	n = e.QueryFieldCard(0, 0, core.LocationDeck, core.QueryCode|core.QueryPosition, buf, false)
	qs, err = wire.ParseQueries(buf[:n])
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, uint32(10), qs[0].Code)
	assert.Equal(t, uint8(1), qs[1].Sequence)
	assert.Equal(t, 2, e.QueryFieldCount(0, 0, core.LocationDeck))
}

func TestResponsesRecorded(t *testing.T) {
	e := New()
	var seen int
	e.OnResponse = func(e *Engine, r Response) {
		seen++
		e.Queue(Batch(Win(0, 0)))
	}
	e.SetResponseI(0, -1)
	e.SetResponseB(0, []byte{1, 2})

	require.Len(t, e.Responses, 2)
	assert.Equal(t, int32(-1), e.Responses[0].Value)
	last, ok := e.LastResponse()
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2}, last.Buf)
	assert.Equal(t, 2, seen)
	assert.Equal(t, 2, e.Remaining())
}
