package capture

import "encoding/binary"

// frameHeaderSize is the fixed 8-byte header preceding every frame's
// payload (§4.1 "Frame format").
const frameHeaderSize = 8

// Frame is one deobfuscated-and-decompressed application payload ready for
// the schema decoder, tagged with its opcode.
type Frame struct {
	Opcode            uint16
	CompressionMethod byte
	Payload           []byte
}

// Reassembler extracts length-prefixed frames from a byte stream that may
// arrive split across arbitrary segment boundaries, one instance per shadow
// socket (§4.1 "Reassembly rules").
type Reassembler struct {
	carry []byte
}

func NewReassembler() *Reassembler { return &Reassembler{} }

// Feed appends seg to the carry and extracts every complete frame it can.
// extract is called once per complete frame with a slice into the
// reassembler's internal buffer — callers that need the bytes to outlive
// the call must copy them.
func (re *Reassembler) Feed(seg []byte, extract func(opcode uint16, compression byte, payload []byte)) {
	re.carry = append(re.carry, seg...)

	for {
		if len(re.carry) < frameHeaderSize {
			return
		}

		totalSize := int(binary.LittleEndian.Uint16(re.carry[0:2]))
		sentinel := re.carry[7]

		if sentinel != 1 || totalSize < 9 {
			// Frame sync lost: the header we thought we had is garbage.
			// Discard everything buffered for this socket and start fresh.
			re.carry = re.carry[:0]
			return
		}

		if len(re.carry) < totalSize {
			return // wait for more bytes
		}

		opcode := binary.LittleEndian.Uint16(re.carry[4:6])
		compression := re.carry[6]
		payload := re.carry[frameHeaderSize:totalSize]

		extract(opcode, compression, payload)

		re.carry = re.carry[totalSize:]
	}
}
