package capture

import (
	"bytes"
	"testing"

	"github.com/golang/snappy"
)

func TestXORTableRoundTrip(t *testing.T) {
	table := NewXORTable([]byte{0x11, 0x22, 0x33, 0x44})
	original := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	data := append([]byte(nil), original...)

	table.Deobfuscate(7, data)
	if bytes.Equal(data, original) {
		t.Fatalf("expected data to change after deobfuscation")
	}
	table.Deobfuscate(7, data) // XOR is its own inverse
	if !bytes.Equal(data, original) {
		t.Fatalf("double deobfuscation should restore original bytes")
	}
}

func TestDecompressRaw(t *testing.T) {
	d := NewDecompressor(nil)
	payload := append(make([]byte, discardHeaderLen), []byte("hello")...)

	out, err := d.Decompress(compressionRaw, payload)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(out) != "hello" {
		t.Fatalf("got %q, want %q", out, "hello")
	}
}

func TestDecompressSnappy(t *testing.T) {
	d := NewDecompressor(nil)
	message := append(make([]byte, discardHeaderLen), []byte("world")...)
	compressed := snappy.Encode(nil, message)

	out, err := d.Decompress(compressionSnappy, compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(out) != "world" {
		t.Fatalf("got %q, want %q", out, "world")
	}
}

func TestDecompressUnknownMethod(t *testing.T) {
	d := NewDecompressor(nil)
	if _, err := d.Decompress(99, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for unknown compression method")
	}
}

func TestDecompressOodleWithoutDecoderErrors(t *testing.T) {
	d := NewDecompressor(nil)
	payload := []byte{5, 0, 0, 0, 1, 2, 3}
	if _, err := d.Decompress(compressionOodle, payload); err == nil {
		t.Fatalf("expected error when no oodle decoder is configured")
	}
}
