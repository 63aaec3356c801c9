//go:build windows

package oodle

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dllLibrary binds the five entry points to a loaded vendor DLL by export
// name. The vendor supplies no Go headers, so the signatures here are
// hand-declared from §4.4's prose description.
type dllLibrary struct {
	decode          *windows.LazyProc
	stateUncompact  *windows.LazyProc
	sharedSetWindow *windows.LazyProc
	stateSize       *windows.LazyProc
	sharedSize      *windows.LazyProc
}

// LoadLibrary loads path as the native decompressor DLL and resolves its
// five exported entry points (§6 "Native library FFI").
func LoadLibrary(path string) (Library, error) {
	dll := windows.NewLazySystemDLL(path)
	if err := dll.Load(); err != nil {
		return nil, fmt.Errorf("oodle: load %s: %w", path, err)
	}

	lib := &dllLibrary{
		decode:          dll.NewProc("OodleNetwork1_Decode"),
		stateUncompact:  dll.NewProc("OodleNetwork1_State_Uncompact"),
		sharedSetWindow: dll.NewProc("OodleNetwork1_Shared_SetWindow"),
		stateSize:       dll.NewProc("OodleNetwork1_State_Size"),
		sharedSize:      dll.NewProc("OodleNetwork1_Shared_Size"),
	}
	for _, p := range []*windows.LazyProc{lib.decode, lib.stateUncompact, lib.sharedSetWindow, lib.stateSize, lib.sharedSize} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("oodle: resolve %s: %w", p.Name, err)
		}
	}
	return lib, nil
}

func (l *dllLibrary) Decode(state, shared, in []byte, outLen int) ([]byte, error) {
	out := make([]byte, outLen)
	ret, _, _ := l.decode.Call(
		uintptr(unsafe.Pointer(&state[0])),
		uintptr(unsafe.Pointer(&shared[0])),
		uintptr(unsafe.Pointer(&in[0])), uintptr(len(in)),
		uintptr(unsafe.Pointer(&out[0])), uintptr(outLen),
	)
	if int32(ret) == 0 {
		return nil, fmt.Errorf("oodle: decode returned failure")
	}
	return out, nil
}

func (l *dllLibrary) StateUncompact(state, packed []byte) error {
	ret, _, _ := l.stateUncompact.Call(
		uintptr(unsafe.Pointer(&state[0])),
		uintptr(unsafe.Pointer(&packed[0])),
	)
	if int32(ret) == 0 {
		return fmt.Errorf("oodle: state-uncompact returned failure")
	}
	return nil
}

func (l *dllLibrary) SharedSetWindow(shared []byte, bits int, window []byte) error {
	l.sharedSetWindow.Call(
		uintptr(unsafe.Pointer(&shared[0])),
		uintptr(bits),
		uintptr(unsafe.Pointer(&window[0])), uintptr(len(window)),
	)
	return nil
}

func (l *dllLibrary) StateSize() (int64, error) {
	ret, _, _ := l.stateSize.Call()
	return int64(ret), nil
}

func (l *dllLibrary) SharedSize(bits int) (int64, error) {
	ret, _, _ := l.sharedSize.Call(uintptr(bits))
	return int64(ret), nil
}
