package oodle

import "testing"

type fakeLibrary struct {
	stateSize  int64
	sharedSize int64
	decodeOut  []byte
}

func (f *fakeLibrary) Decode(state, shared, in []byte, outLen int) ([]byte, error) {
	return f.decodeOut, nil
}
func (f *fakeLibrary) StateUncompact(state, packed []byte) error         { return nil }
func (f *fakeLibrary) SharedSetWindow(shared []byte, bits int, window []byte) error { return nil }
func (f *fakeLibrary) StateSize() (int64, error)                        { return f.stateSize, nil }
func (f *fakeLibrary) SharedSize(bits int) (int64, error)                { return f.sharedSize, nil }

func buildBlob(compacted []byte) []byte {
	raw := make([]byte, stateBlobWindowOffset+stateBlobWindowSize+len(compacted))
	raw[stateBlobCompactedSizeOffset] = byte(len(compacted))
	raw[stateBlobCompactedSizeOffset+1] = byte(len(compacted) >> 8)
	copy(raw[stateBlobWindowOffset+stateBlobWindowSize:], compacted)
	return raw
}

func TestParseStateBlob(t *testing.T) {
	compacted := []byte{1, 2, 3, 4, 5}
	raw := buildBlob(compacted)

	blob, err := ParseStateBlob(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if blob.CompactedSize != uint32(len(compacted)) {
		t.Fatalf("compacted size = %d, want %d", blob.CompactedSize, len(compacted))
	}
	if len(blob.Window) != stateBlobWindowSize {
		t.Fatalf("window size = %d, want %d", len(blob.Window), stateBlobWindowSize)
	}
	if string(blob.Compacted) != string(compacted) {
		t.Fatalf("compacted bytes mismatch")
	}
}

func TestParseStateBlobTooShort(t *testing.T) {
	if _, err := ParseStateBlob([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for undersized blob")
	}
}

func TestDecoderDecodeValidatesLength(t *testing.T) {
	blob, err := ParseStateBlob(buildBlob([]byte{0xAB}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lib := &fakeLibrary{stateSize: 16, sharedSize: 32, decodeOut: []byte{1, 2, 3}}

	dec, err := NewDecoder(lib, blob)
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}

	if _, err := dec.Decode([]byte{0, 0, 0}, 10); err == nil {
		t.Fatalf("expected length-mismatch error")
	}
	out, err := dec.Decode([]byte{0, 0, 0}, 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("decoded %d bytes, want 3", len(out))
	}
}
