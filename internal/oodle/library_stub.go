//go:build !windows

package oodle

import "fmt"

// LoadLibrary is unavailable outside Windows; the vendor ships no binary
// for other platforms.
func LoadLibrary(path string) (Library, error) {
	return nil, fmt.Errorf("oodle: native library loading is only supported on windows")
}
