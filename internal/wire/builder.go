package wire

import "encoding/binary"

// Builder appends little-endian values to a growing buffer. Methods return
// the builder so fixtures can be written as one expression.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) U8(v uint8) *Builder {
	b.buf = append(b.buf, v)
	return b
}

func (b *Builder) Bool(v bool) *Builder {
	if v {
		return b.U8(1)
	}
	return b.U8(0)
}

func (b *Builder) U16(v uint16) *Builder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *Builder) I32(v int32) *Builder {
	return b.U32(uint32(v))
}

// Loc appends the four location bytes {controller, location, sequence, position}.
func (b *Builder) Loc(controller, location, sequence, position uint8) *Builder {
	b.buf = append(b.buf, controller, location, sequence, position)
	return b
}

func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.buf) }

// Bytes returns the built buffer.
func (b *Builder) Bytes() []byte { return b.buf }
