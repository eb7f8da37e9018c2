package wire

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/ygoenv/internal/core"
)

// ErrRecordLength is reported when a query record's declared length does not
// match the fields its flags describe.
var ErrRecordLength = errors.New("wire: query record length mismatch")

// CardQuery is one decoded card record from query_card or query_field_card.
// Only the fields selected by Flags are meaningful.
type CardQuery struct {
	Empty bool
	Flags uint32

	Code       uint32
	Controller uint8
	Location   uint8
	Sequence   uint8
	Position   uint8

	Alias       uint32
	Type        uint32
	Level       uint32
	Rank        uint32
	Attribute   uint32
	Race        uint32
	Attack      int32
	Defense     int32
	BaseAttack  int32
	BaseDefense int32
	Reason      uint32
	Overlay     []uint32
	Owner       uint32
	LScale      uint32
	RScale      uint32
	LinkRating  uint32
	LinkMarker  uint32
}

// PackedLocation returns the position word as the engine writes it.
func (q CardQuery) PackedLocation() uint32 {
	return uint32(q.Controller) | uint32(q.Location)<<8 | uint32(q.Sequence)<<16 | uint32(q.Position)<<24
}

// queryBits lists every flag the engine can set, lowest bit first; fields
// appear in the record in this order.
var queryBits = []uint32{
	core.QueryCode, core.QueryPosition, core.QueryAlias, core.QueryType,
	core.QueryLevel, core.QueryRank, core.QueryAttribute, core.QueryRace,
	core.QueryAttack, core.QueryDefense, core.QueryBaseAttack, core.QueryBaseDefense,
	core.QueryReason, core.QueryReasonCard, core.QueryEquipCard, core.QueryTargetCard,
	core.QueryOverlayCard, core.QueryCounters, core.QueryOwner, core.QueryStatus,
	core.QueryIsPublic, core.QueryLScale, core.QueryRScale, core.QueryLink,
}

// ParseQuery decodes the record at the reader's cursor.
func ParseQuery(r *Reader) (CardQuery, error) {
	start := r.Offset()
	length := r.U32()
	if err := r.Err(); err != nil {
		return CardQuery{}, err
	}
	if length == core.LenEmpty {
		return CardQuery{Empty: true}, nil
	}

	q := CardQuery{Flags: r.U32()}
	for _, bit := range queryBits {
		if q.Flags&bit == 0 {
			continue
		}
		switch bit {
		case core.QueryCode:
			q.Code = r.U32()
		case core.QueryPosition:
			q.Controller = r.U8()
			q.Location = r.U8()
			q.Sequence = r.U8()
			q.Position = r.U8()
		case core.QueryAlias:
			q.Alias = r.U32()
		case core.QueryType:
			q.Type = r.U32()
		case core.QueryLevel:
			q.Level = r.U32()
		case core.QueryRank:
			q.Rank = r.U32()
		case core.QueryAttribute:
			q.Attribute = r.U32()
		case core.QueryRace:
			q.Race = r.U32()
		case core.QueryAttack:
			q.Attack = r.I32()
		case core.QueryDefense:
			q.Defense = r.I32()
		case core.QueryBaseAttack:
			q.BaseAttack = r.I32()
		case core.QueryBaseDefense:
			q.BaseDefense = r.I32()
		case core.QueryReason:
			q.Reason = r.U32()
		case core.QueryOverlayCard:
			n := r.U32()
			if r.Err() == nil && int(n)*4 > r.Len() {
				return q, fmt.Errorf("%w: overlay count %d", ErrRecordLength, n)
			}
			for i := uint32(0); i < n; i++ {
				q.Overlay = append(q.Overlay, r.U32())
			}
		case core.QueryTargetCard, core.QueryCounters:
			n := r.U32()
			r.Skip(int(n) * 4)
		case core.QueryOwner:
			q.Owner = r.U32()
		case core.QueryLScale:
			q.LScale = r.U32()
		case core.QueryRScale:
			q.RScale = r.U32()
		case core.QueryLink:
			q.LinkRating = r.U32()
			q.LinkMarker = r.U32()
		default:
			r.Skip(4)
		}
	}
	if err := r.Err(); err != nil {
		return q, err
	}
	if got := r.Offset() - start; uint32(got) != length {
		return q, fmt.Errorf("%w: declared %d, read %d (flags %#x)", ErrRecordLength, length, got, q.Flags)
	}
	return q, nil
}

// ParseQueries decodes every record in a query_field_card buffer.
func ParseQueries(buf []byte) ([]CardQuery, error) {
	r := NewReader(buf)
	var out []CardQuery
	for !r.Done() {
		q, err := ParseQuery(r)
		if err != nil {
			return out, err
		}
		out = append(out, q)
	}
	return out, nil
}

// AppendQuery encodes q with the given flags in the engine's record layout.
// Lists the reader skips are written empty.
func AppendQuery(b *Builder, q CardQuery, flags uint32) *Builder {
	if q.Empty {
		return b.U32(core.LenEmpty)
	}
	body := NewBuilder()
	for _, bit := range queryBits {
		if flags&bit == 0 {
			continue
		}
		switch bit {
		case core.QueryCode:
			body.U32(q.Code)
		case core.QueryPosition:
			body.Loc(q.Controller, q.Location, q.Sequence, q.Position)
		case core.QueryAlias:
			body.U32(q.Alias)
		case core.QueryType:
			body.U32(q.Type)
		case core.QueryLevel:
			body.U32(q.Level)
		case core.QueryRank:
			body.U32(q.Rank)
		case core.QueryAttribute:
			body.U32(q.Attribute)
		case core.QueryRace:
			body.U32(q.Race)
		case core.QueryAttack:
			body.I32(q.Attack)
		case core.QueryDefense:
			body.I32(q.Defense)
		case core.QueryBaseAttack:
			body.I32(q.BaseAttack)
		case core.QueryBaseDefense:
			body.I32(q.BaseDefense)
		case core.QueryReason:
			body.U32(q.Reason)
		case core.QueryOverlayCard:
			body.U32(uint32(len(q.Overlay)))
			for _, c := range q.Overlay {
				body.U32(c)
			}
		case core.QueryTargetCard, core.QueryCounters:
			body.U32(0)
		case core.QueryOwner:
			body.U32(q.Owner)
		case core.QueryLScale:
			body.U32(q.LScale)
		case core.QueryRScale:
			body.U32(q.RScale)
		case core.QueryLink:
			body.U32(q.LinkRating).U32(q.LinkMarker)
		default:
			body.U32(0)
		}
	}
	return b.U32(uint32(8 + body.Len())).U32(flags).Raw(body.Bytes())
}
