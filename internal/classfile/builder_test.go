package classfile

import (
	"encoding/binary"
	"math"
)

// classBytes assembles minimal class files for reader tests.
type classBytes struct {
	pool  []byte
	count uint16
	utf8s map[string]uint16
}

func newClassBytes() *classBytes {
	return &classBytes{count: 1, utf8s: map[string]uint16{}}
}

func (b *classBytes) u2(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

func (b *classBytes) u4(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

func (b *classBytes) utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	b.pool = append(b.pool, cpUtf8)
	b.pool = b.u2(b.pool, uint16(len(s)))
	b.pool = append(b.pool, s...)
	idx := b.count
	b.count++
	b.utf8s[s] = idx
	return idx
}

func (b *classBytes) class(name string) uint16 {
	n := b.utf8(name)
	b.pool = append(b.pool, cpClass)
	b.pool = b.u2(b.pool, n)
	idx := b.count
	b.count++
	return idx
}

func (b *classBytes) integer(v int32) uint16 {
	b.pool = append(b.pool, cpInteger)
	b.pool = b.u4(b.pool, uint32(v))
	idx := b.count
	b.count++
	return idx
}

func (b *classBytes) long(v int64) uint16 {
	b.pool = append(b.pool, cpLong)
	b.pool = b.u4(b.pool, uint32(uint64(v)>>32))
	b.pool = b.u4(b.pool, uint32(v))
	idx := b.count
	b.count += 2
	return idx
}

func (b *classBytes) double(v float64) uint16 {
	bits := math.Float64bits(v)
	b.pool = append(b.pool, cpDouble)
	b.pool = b.u4(b.pool, uint32(bits>>32))
	b.pool = b.u4(b.pool, uint32(bits))
	idx := b.count
	b.count += 2
	return idx
}

func (b *classBytes) attr(name string, body []byte) []byte {
	var out []byte
	out = b.u2(out, b.utf8(name))
	out = b.u4(out, uint32(len(body)))
	return append(out, body...)
}

type memberBytes struct {
	access uint16
	name   string
	desc   string
	attrs  [][]byte
}

func (b *classBytes) member(m memberBytes) []byte {
	var out []byte
	out = b.u2(out, m.access)
	out = b.u2(out, b.utf8(m.name))
	out = b.u2(out, b.utf8(m.desc))
	out = b.u2(out, uint16(len(m.attrs)))
	for _, a := range m.attrs {
		out = append(out, a...)
	}
	return out
}

// build emits the class. All pool entries must be created before build.
func (b *classBytes) build(access uint16, this, super uint16, ifaces []uint16, fields, methods [][]byte, attrs [][]byte) []byte {
	var out []byte
	out = b.u4(out, classMagic)
	out = b.u2(out, 0)
	out = b.u2(out, 61)
	out = b.u2(out, b.count)
	out = append(out, b.pool...)
	out = b.u2(out, access)
	out = b.u2(out, this)
	out = b.u2(out, super)
	out = b.u2(out, uint16(len(ifaces)))
	for _, i := range ifaces {
		out = b.u2(out, i)
	}
	out = b.u2(out, uint16(len(fields)))
	for _, f := range fields {
		out = append(out, f...)
	}
	out = b.u2(out, uint16(len(methods)))
	for _, m := range methods {
		out = append(out, m...)
	}
	out = b.u2(out, uint16(len(attrs)))
	for _, a := range attrs {
		out = append(out, a...)
	}
	return out
}
