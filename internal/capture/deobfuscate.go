package capture

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"

	"github.com/wardmeter/meter/internal/oodle"
)

// XORTable is the static deobfuscation key loaded from disk at startup
// (§4.1 "Deobfuscation", §6 "Files on disk"). It never mutates after load —
// unlike the teacher's rolling stream cipher, this is a stateless lookup.
type XORTable struct {
	table []byte
}

func NewXORTable(raw []byte) *XORTable {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return &XORTable{table: cp}
}

// Deobfuscate XORs payload in place against table[(opcode+i) mod N].
func (x *XORTable) Deobfuscate(opcode uint16, payload []byte) {
	n := len(x.table)
	if n == 0 {
		return
	}
	for i := range payload {
		payload[i] ^= x.table[(int(opcode)+i)%n]
	}
}

// Compression method tags from the frame header (§4.1).
const (
	compressionRaw    = 0
	compressionSnappy = 2
	compressionOodle  = 3
)

// discardHeaderLen is the number of leading bytes every decompressed
// message carries as an internal header, stripped before it reaches the
// schema decoder (§4.1 "Decompression, by method").
const discardHeaderLen = 16

// Decompressor dispatches a frame's payload to the method its header names,
// returning the message bytes ready for the schema decoder.
type Decompressor struct {
	oodle *oodle.Decoder
}

func NewDecompressor(o *oodle.Decoder) *Decompressor {
	return &Decompressor{oodle: o}
}

func (d *Decompressor) Decompress(method byte, payload []byte) ([]byte, error) {
	switch method {
	case compressionRaw:
		if len(payload) < discardHeaderLen {
			return nil, fmt.Errorf("capture: raw payload shorter than header (%d bytes)", len(payload))
		}
		return payload[discardHeaderLen:], nil

	case compressionSnappy:
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("capture: snappy decode: %w", err)
		}
		if len(decoded) < discardHeaderLen {
			return nil, fmt.Errorf("capture: decompressed snappy payload shorter than header")
		}
		return decoded[discardHeaderLen:], nil

	case compressionOodle:
		if len(payload) < 4 {
			return nil, fmt.Errorf("capture: oodle payload missing uncompressed-length prefix")
		}
		uncompressedLen := binary.LittleEndian.Uint32(payload[:4])
		if d.oodle == nil {
			return nil, fmt.Errorf("capture: oodle decoder not configured")
		}
		decoded, err := d.oodle.Decode(payload[4:], int(uncompressedLen))
		if err != nil {
			return nil, fmt.Errorf("capture: oodle decode: %w", err)
		}
		if len(decoded) < discardHeaderLen {
			return nil, fmt.Errorf("capture: decompressed oodle payload shorter than header")
		}
		return decoded[discardHeaderLen:], nil

	default:
		return nil, fmt.Errorf("capture: unknown compression method %d", method)
	}
}
