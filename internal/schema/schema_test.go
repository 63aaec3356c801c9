package schema

import (
	"testing"

	"go.uber.org/zap"

	"github.com/wardmeter/meter/internal/domain"
)

func TestDecodeInitEnvironmentRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U32(42)

	arena := NewArena(256)
	reg := NewRegistry(zap.NewNop())

	ev, err := reg.Decode(OpInitEnvironment, w.Out(), arena)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ie, ok := ev.(domain.InitEnvironment)
	if !ok {
		t.Fatalf("want InitEnvironment, got %T", ev)
	}
	if ie.POV != 42 {
		t.Fatalf("POV = %d, want 42", ie.POV)
	}
}

func TestDecodeNewPlayerRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U32(7)           // object
	_ = w.String("Hero")
	w.I32(3)           // class
	w.F32(1520.5)      // gear level
	w.Bool(true)       // has char id
	w.U32(99)          // char id

	arena := NewArena(256)
	reg := NewRegistry(zap.NewNop())

	ev, err := reg.Decode(OpNewPlayer, w.Out(), arena)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	np, ok := ev.(domain.NewPlayer)
	if !ok {
		t.Fatalf("want NewPlayer, got %T", ev)
	}
	if np.Name != "Hero" || np.Class != 3 || np.CharID == nil || *np.CharID != 99 {
		t.Fatalf("unexpected decode: %+v", np)
	}
}

func TestArraySkipsWhenLengthExceedsMax(t *testing.T) {
	r := NewReader([]byte{}, NewArena(8))
	out, err := Array(r, 100, 10, func(r *Reader) (uint8, error) { return r.U8() })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil slice for over-max length, got %v", out)
	}
}

func TestPackedI64Positive(t *testing.T) {
	// flag byte: sign=0, length=0, low nibble=5 -> value 5
	r := NewReader([]byte{0x05}, NewArena(8))
	v, err := r.PackedI64()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != 5 {
		t.Fatalf("want 5, got %d", v)
	}
}

func TestPackedI64Negative(t *testing.T) {
	r := NewReader([]byte{0x85}, NewArena(8))
	v, err := r.PackedI64()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != -5 {
		t.Fatalf("want -5, got %d", v)
	}
}

func TestUnknownOpcodeDecodesToNil(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	ev, err := reg.Decode(Opcode(0xFFFF), []byte{1, 2, 3}, NewArena(8))
	if err != nil {
		t.Fatalf("unexpected error for unknown opcode: %v", err)
	}
	if ev != nil {
		t.Fatalf("expected nil event for unknown opcode, got %v", ev)
	}
}

func TestShortBufferIsFrameLocalError(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	// InitEnvironment needs 4 bytes; give it none.
	_, err := reg.Decode(OpInitEnvironment, []byte{}, NewArena(8))
	if err == nil {
		t.Fatalf("expected an error for short buffer")
	}
}

func TestArenaResetFreesAllocations(t *testing.T) {
	a := NewArena(16)
	mark := a.Mark()
	a.AllocString("hello")
	if a.Mark() == mark {
		t.Fatalf("expected arena cursor to advance")
	}
	a.Reset(mark)
	if a.Mark() != mark {
		t.Fatalf("expected arena cursor reset to baseline")
	}
}
