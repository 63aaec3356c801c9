package schema

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/unicode"
)

var utf16Encoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

// Writer builds a schema-encoded payload. It exists for fixture construction
// in decoder tests — the capture pipeline only ever reads wire frames,
// never writes them (the meter is a passive observer, §1).
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{buf: make([]byte, 0, 64)} }

func (w *Writer) U8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

// String writes a u16 length prefix followed by the UTF-16LE encoding of s.
func (w *Writer) String(s string) error {
	encoded, err := utf16Encoder.Bytes([]byte(s))
	if err != nil {
		return err
	}
	w.U16(uint16(len(encoded) / 2))
	w.buf = append(w.buf, encoded...)
	return nil
}

func (w *Writer) Bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Out() []byte { return w.buf }
