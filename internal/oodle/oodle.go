// Package oodle wraps the five-entry-point native decompression library
// named in §4.4 and §6 ("Native library FFI"): decode, state-uncompact,
// shared-set-window, state-size, and shared-size. It is loaded as a
// platform DLL via syscall, the same mechanism internal/capture uses for
// the Win32 window/socket APIs — there is no vendored or generated cgo
// binding in the example pack to build on.
package oodle

import (
	"fmt"
	"sync"
)

// StateBlob is the on-disk decompressor state file described in §6: a
// header with the compacted state size at offset 0x18, a sliding window
// of fixed size starting at offset 0x20, and the compacted state after it.
type StateBlob struct {
	CompactedSize uint32
	Window        []byte
	Compacted     []byte
}

const (
	stateBlobCompactedSizeOffset = 0x18
	stateBlobWindowOffset        = 0x20
	stateBlobWindowSize          = 0x800000
)

// ParseStateBlob splits a raw state file into its three declared sections.
func ParseStateBlob(raw []byte) (StateBlob, error) {
	if len(raw) < stateBlobCompactedSizeOffset+4 {
		return StateBlob{}, fmt.Errorf("oodle: state blob too short for header")
	}
	compactedSize := leUint32(raw[stateBlobCompactedSizeOffset:])

	if len(raw) < stateBlobWindowOffset+stateBlobWindowSize {
		return StateBlob{}, fmt.Errorf("oodle: state blob too short for sliding window")
	}
	window := raw[stateBlobWindowOffset : stateBlobWindowOffset+stateBlobWindowSize]

	compactedStart := stateBlobWindowOffset + stateBlobWindowSize
	if len(raw) < compactedStart+int(compactedSize) {
		return StateBlob{}, fmt.Errorf("oodle: state blob shorter than declared compacted size")
	}
	compacted := raw[compactedStart : compactedStart+int(compactedSize)]

	return StateBlob{CompactedSize: compactedSize, Window: window, Compacted: compacted}, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// hashTableBits is the shared-buffer sizing parameter named in §4.4
// ("≈ 0x13").
const hashTableBits = 0x13

// Library is the native entry-point surface this package binds to.
// Implementations load the five functions from the vendor-supplied DLL;
// Decoder is built on top of it.
type Library interface {
	Decode(state, shared, in []byte, outLen int) (out []byte, err error)
	StateUncompact(state []byte, packed []byte) error
	SharedSetWindow(shared []byte, bits int, window []byte) error
	StateSize() (int64, error)
	SharedSize(bits int) (int64, error)
}

// Decoder owns one library handle plus its state and shared buffers,
// initialized once at startup from a StateBlob (§4.4). Decode calls are
// serialized by mu, since the buffers are shared by every caller.
type Decoder struct {
	mu     sync.Mutex
	lib    Library
	state  []byte
	shared []byte
}

// NewDecoder allocates the state and shared buffers, uncompacts the state
// blob into the state buffer, and primes the shared buffer's sliding
// window, per the §4.4 startup sequence.
func NewDecoder(lib Library, blob StateBlob) (*Decoder, error) {
	stateSize, err := lib.StateSize()
	if err != nil {
		return nil, fmt.Errorf("oodle: query state size: %w", err)
	}
	sharedSize, err := lib.SharedSize(hashTableBits)
	if err != nil {
		return nil, fmt.Errorf("oodle: query shared size: %w", err)
	}

	d := &Decoder{
		lib:    lib,
		state:  make([]byte, stateSize),
		shared: make([]byte, sharedSize),
	}

	if err := lib.StateUncompact(d.state, blob.Compacted); err != nil {
		return nil, fmt.Errorf("oodle: uncompact state: %w", err)
	}
	if err := lib.SharedSetWindow(d.shared, hashTableBits, blob.Window); err != nil {
		return nil, fmt.Errorf("oodle: prime shared window: %w", err)
	}
	return d, nil
}

// Decode expands one frame's compressed bytes to outLen bytes of plaintext,
// using the persistent state and shared dictionary buffers (§4.4).
func (d *Decoder) Decode(compressed []byte, outLen int) ([]byte, error) {
	d.mu.Lock()
	out, err := d.lib.Decode(d.state, d.shared, compressed, outLen)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(out) != outLen {
		return nil, fmt.Errorf("oodle: decoded %d bytes, want %d", len(out), outLen)
	}
	return out, nil
}
