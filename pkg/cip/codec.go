package cip

import (
	"encoding/binary"
	"math"
)

// Width-tagged little-endian pack/unpack helpers. These are the primitive
// layer everything else in this package (EPATH segments, message router
// framing, Forward Open bodies) is built from; Marshal/Unmarshal cover the
// reflective struct case, these cover the single-scalar case where callers
// want to control width explicitly instead of relying on a Go type's size.

// PackUint8 encodes v as a single byte.
func PackUint8(v uint8) []byte { return []byte{v} }

// PackUint16 encodes v little-endian in 2 bytes.
func PackUint16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// PackUint32 encodes v little-endian in 4 bytes.
func PackUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// PackUint64 encodes v little-endian in 8 bytes.
func PackUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// UnpackUint8 decodes a single byte. Fails with EncodingError if data is empty.
func UnpackUint8(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, newEncodingError("UnpackUint8", "need 1 byte, got %d", len(data))
	}
	return data[0], nil
}

// UnpackUint16 decodes 2 little-endian bytes. Fails with EncodingError on a
// width mismatch.
func UnpackUint16(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, newEncodingError("UnpackUint16", "need 2 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint16(data), nil
}

// UnpackUint32 decodes 4 little-endian bytes. Fails with EncodingError on a
// width mismatch.
func UnpackUint32(data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, newEncodingError("UnpackUint32", "need 4 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}

// UnpackUint64 decodes 8 little-endian bytes. Fails with EncodingError on a
// width mismatch.
func UnpackUint64(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, newEncodingError("UnpackUint64", "need 8 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

// TypeCodec describes how to size and decode a CIP primitive data type when
// parsing a Read Tag / Multiple Service reply: the fixed wire size, and a
// function turning the raw bytes into a Go value.
type TypeCodec struct {
	Size   int
	Unpack func([]byte) (any, error)
}

// TypeCodecs maps a CIP DataType code to its (size, unpack) pair, covering
// the primitive types enumerated in the distilled spec (BOOL, SINT, INT,
// DINT, LINT, REAL, USINT, UINT, UDINT, LWORD, BYTE, WORD, DWORD). STRING
// variants are variable length and are handled specially by callers, not
// through this table.
var TypeCodecs = map[DataType]TypeCodec{
	TypeBOOL:  {Size: 1, Unpack: func(b []byte) (any, error) { v, e := UnpackUint8(b); return v != 0, e }},
	TypeSINT:  {Size: 1, Unpack: func(b []byte) (any, error) { v, e := UnpackUint8(b); return int8(v), e }},
	TypeUSINT: {Size: 1, Unpack: func(b []byte) (any, error) { return UnpackUint8(b) }},
	TypeBYTE:  {Size: 1, Unpack: func(b []byte) (any, error) { return UnpackUint8(b) }},
	TypeINT:   {Size: 2, Unpack: func(b []byte) (any, error) { v, e := UnpackUint16(b); return int16(v), e }},
	TypeUINT:  {Size: 2, Unpack: func(b []byte) (any, error) { return UnpackUint16(b) }},
	TypeWORD:  {Size: 2, Unpack: func(b []byte) (any, error) { return UnpackUint16(b) }},
	TypeDINT:  {Size: 4, Unpack: func(b []byte) (any, error) { v, e := UnpackUint32(b); return int32(v), e }},
	TypeUDINT: {Size: 4, Unpack: func(b []byte) (any, error) { return UnpackUint32(b) }},
	TypeDWORD: {Size: 4, Unpack: func(b []byte) (any, error) { return UnpackUint32(b) }},
	TypeREAL: {Size: 4, Unpack: func(b []byte) (any, error) {
		v, e := UnpackUint32(b)
		if e != nil {
			return nil, e
		}
		return math.Float32frombits(v), nil
	}},
	TypeLINT:  {Size: 8, Unpack: func(b []byte) (any, error) { v, e := UnpackUint64(b); return int64(v), e }},
	TypeULINT: {Size: 8, Unpack: func(b []byte) (any, error) { return UnpackUint64(b) }},
	TypeLWORD: {Size: 8, Unpack: func(b []byte) (any, error) { return UnpackUint64(b) }},
	TypeLREAL: {Size: 8, Unpack: func(b []byte) (any, error) {
		v, e := UnpackUint64(b)
		if e != nil {
			return nil, e
		}
		return math.Float64frombits(v), nil
	}},
}
