package capture

import (
	"encoding/binary"
	"testing"
)

func buildFrame(opcode uint16, compression byte, payload []byte) []byte {
	total := frameHeaderSize + len(payload)
	buf := make([]byte, total)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(total))
	binary.LittleEndian.PutUint16(buf[4:6], opcode)
	buf[6] = compression
	buf[7] = 1
	copy(buf[frameHeaderSize:], payload)
	return buf
}

// TestReassemblyAcrossArbitrarySegmentation feeds the same stream of valid
// frames split at every possible byte boundary and checks the decoded
// opcode sequence always matches the original frame order (§8).
func TestReassemblyAcrossArbitrarySegmentation(t *testing.T) {
	frames := [][]byte{
		buildFrame(1, 0, []byte("abc")),
		buildFrame(2, 2, []byte("defgh")),
		buildFrame(3, 3, []byte{0x7f}),
	}
	var stream []byte
	for _, f := range frames {
		stream = append(stream, f...)
	}

	for split := 0; split <= len(stream); split++ {
		re := NewReassembler()
		var gotOpcodes []uint16
		extract := func(opcode uint16, compression byte, payload []byte) {
			gotOpcodes = append(gotOpcodes, opcode)
		}
		re.Feed(stream[:split], extract)
		re.Feed(stream[split:], extract)

		if len(gotOpcodes) != len(frames) {
			t.Fatalf("split %d: got %d frames, want %d", split, len(gotOpcodes), len(frames))
		}
		for i, op := range gotOpcodes {
			if op != uint16(i+1) {
				t.Fatalf("split %d: frame %d opcode = %d, want %d", split, i, op, i+1)
			}
		}
	}
}

func TestReassemblerMultipleFramesInOneSegment(t *testing.T) {
	var stream []byte
	stream = append(stream, buildFrame(10, 0, []byte("x"))...)
	stream = append(stream, buildFrame(11, 0, []byte("y"))...)

	re := NewReassembler()
	var got []uint16
	re.Feed(stream, func(opcode uint16, compression byte, payload []byte) {
		got = append(got, opcode)
	})
	if len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Fatalf("got %v, want [10 11]", got)
	}
}

func TestReassemblerDropsOnSentinelMismatch(t *testing.T) {
	frame := buildFrame(1, 0, []byte("ok"))
	frame[7] = 0 // corrupt sentinel

	re := NewReassembler()
	called := false
	re.Feed(frame, func(opcode uint16, compression byte, payload []byte) { called = true })
	if called {
		t.Fatalf("expected frame to be dropped on sentinel mismatch")
	}
	if len(re.carry) != 0 {
		t.Fatalf("expected carry to be flushed on sync loss, got %d bytes", len(re.carry))
	}
}

func TestReassemblerRetainsShortCarry(t *testing.T) {
	frame := buildFrame(5, 0, []byte("hello world"))

	re := NewReassembler()
	called := false
	re.Feed(frame[:4], func(opcode uint16, compression byte, payload []byte) { called = true })
	if called {
		t.Fatalf("should not extract a frame from a short header")
	}
	re.Feed(frame[4:], func(opcode uint16, compression byte, payload []byte) {
		called = true
		if opcode != 5 {
			t.Fatalf("opcode = %d, want 5", opcode)
		}
	})
	if !called {
		t.Fatalf("expected the frame to be extracted once complete")
	}
}
