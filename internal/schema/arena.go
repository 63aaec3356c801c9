package schema

// Arena is a bump allocator reused across frames. Byte slices produced while
// decoding one frame are backed by the arena's buffer (strings are copied
// out of it, see AllocString); the
// cursor is reset to the frame's starting mark once the event has been
// consumed, freeing the whole frame's allocations in O(1) (§4.2).
type Arena struct {
	buf []byte
}

func NewArena(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, capacity)}
}

// Mark returns the current bump cursor, to be passed to Reset after the
// frame's event has been handed off.
func (a *Arena) Mark() int { return len(a.buf) }

// Reset truncates the arena back to a previously captured Mark.
func (a *Arena) Reset(mark int) { a.buf = a.buf[:mark] }

// AllocString copies s into the arena, advancing the cursor, and returns a
// Go string built from those bytes. The conversion copies, so the result
// does not alias the arena and stays valid after Reset.
func (a *Arena) AllocString(s string) string {
	start := len(a.buf)
	a.buf = append(a.buf, s...)
	return string(a.buf[start:len(a.buf)])
}

// AllocBytes copies b into the arena and returns a slice aliasing it.
func (a *Arena) AllocBytes(b []byte) []byte {
	start := len(a.buf)
	a.buf = append(a.buf, b...)
	return a.buf[start:len(a.buf)]
}
