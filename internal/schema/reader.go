package schema

import (
	"encoding/binary"
	"errors"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// ErrShortBuffer is returned by any primitive reader when the payload has
// fewer bytes remaining than the field requires — a frame-local error per §7.
var ErrShortBuffer = errors.New("schema: short buffer")

// ErrBadString is returned when a UTF-16 string's code units cannot be decoded.
var ErrBadString = errors.New("schema: invalid utf-16 string")

// ErrBadEnum is returned when a decoded tag value falls outside its declared range.
var ErrBadEnum = errors.New("schema: invalid enum tag")

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// Reader decodes primitive and compound fields from one frame's payload,
// in the order a generated per-opcode decoder function calls them. All
// multi-byte integers are little-endian (§4.2).
type Reader struct {
	data  []byte
	off   int
	arena *Arena
}

func NewReader(data []byte, arena *Arena) *Reader {
	return &Reader{data: data, arena: arena}
}

func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) require(n int) error {
	if r.off+n > len(r.data) {
		return ErrShortBuffer
	}
	return nil
}

func (r *Reader) U8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

func (r *Reader) U16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) U64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// String reads a u16 length prefix N followed by 2*N bytes of little-endian
// UTF-16, decoding to UTF-8 copied through the frame's arena (§4.2); the
// returned string does not alias the arena.
func (r *Reader) String() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	byteLen := int(n) * 2
	if err := r.require(byteLen); err != nil {
		return "", err
	}
	raw := r.data[r.off : r.off+byteLen]
	r.off += byteLen

	decoded, err := utf16Decoder.Bytes(raw)
	if err != nil {
		return "", ErrBadString
	}
	return r.arena.AllocString(string(decoded)), nil
}

// Bytes reads n raw bytes, copied into the arena.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	raw := r.data[r.off : r.off+n]
	r.off += n
	return r.arena.AllocBytes(raw), nil
}

// Skip advances past n bytes without copying.
func (r *Reader) Skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// Optional parses inner() only if cond is true, per the Optional compound
// reader's condition (a caller-evaluated boolean comparison, §4.2).
func Optional[T any](r *Reader, cond bool, inner func(*Reader) (T, error)) (*T, error) {
	if !cond {
		return nil, nil
	}
	v, err := inner(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Array parses a length L (coerced to int) followed by L elements of T. If L
// exceeds max, no element is parsed (the caller gets a nil slice, no error)
// rather than attempting to parse potentially garbage data (§4.2). In that
// case the reader's offset is not advanced past the element bytes, so fields
// after the array are not re-synchronized.
func Array[T any](r *Reader, length int, max int, inner func(*Reader) (T, error)) ([]T, error) {
	if length > max {
		return nil, nil
	}
	if length < 0 {
		return nil, ErrBadEnum
	}
	out := make([]T, 0, length)
	for i := 0; i < length; i++ {
		v, err := inner(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// KindedBytes reads a length L and, if L <= max, skips L*multiplier bytes.
// Used for opaque sub-records the decoder does not need to interpret (§4.2).
func (r *Reader) KindedBytes(length, max, multiplier int) error {
	if length > max {
		return nil
	}
	return r.Skip(length * multiplier)
}

// PackedI64 reads the one-byte-flag, variable-length-follow-on encoding of a
// signed 64-bit integer: the flag's low 4 bits are the low-order nibble, the
// next 3 bits give the count of additional high-order bytes that follow, and
// the top bit is the sign (§4.2).
func (r *Reader) PackedI64() (int64, error) {
	flag, err := r.U8()
	if err != nil {
		return 0, err
	}
	negative := flag&0x80 != 0
	length := int((flag >> 4) & 0x07)
	low := int64(flag & 0x0F)

	var hi int64
	for i := 0; i < length; i++ {
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		hi |= int64(b) << (8 * uint(i))
	}
	v := low | (hi << 4)
	if negative {
		v = -v
	}
	return v, nil
}

// SimpleU64 peeks a u16: if its low 12 bits are below 0x81f, a full u64
// follows; otherwise the u16 itself is consumed and the value is
// synthesized as (u16 & 0xfff) | 0x11000 (§4.2).
func (r *Reader) SimpleU64() (uint64, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	peek := binary.LittleEndian.Uint16(r.data[r.off:])
	if peek&0x0FFF < 0x81f {
		r.off += 2
		lo := uint64(peek)
		hiBytes, err := r.Bytes(6)
		if err != nil {
			return 0, err
		}
		var hi uint64
		for i, b := range hiBytes {
			hi |= uint64(b) << (8 * uint(i))
		}
		return lo | (hi << 16), nil
	}
	r.off += 2
	return uint64(peek&0x0FFF) | 0x11000, nil
}
