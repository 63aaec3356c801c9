package resources

import (
	"fmt"
	"os"

	"github.com/wardmeter/meter/internal/oodle"
)

// LoadOodleState reads the decompressor state blob from disk (§6) and builds
// a decoder around it through the platform FFI library. On non-Windows
// builds oodle.LoadLibrary always fails, which the caller treats the same
// as "oodle support unavailable" (compression method 3 frames get dropped).
func LoadOodleState(blobPath, libraryPath string) (*oodle.Decoder, error) {
	raw, err := os.ReadFile(blobPath)
	if err != nil {
		return nil, fmt.Errorf("resources: read oodle state %s: %w", blobPath, err)
	}

	blob, err := oodle.ParseStateBlob(raw)
	if err != nil {
		return nil, fmt.Errorf("resources: parse oodle state %s: %w", blobPath, err)
	}

	lib, err := oodle.LoadLibrary(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("resources: load oodle library %s: %w", libraryPath, err)
	}

	dec, err := oodle.NewDecoder(lib, blob)
	if err != nil {
		return nil, fmt.Errorf("resources: init oodle decoder: %w", err)
	}
	return dec, nil
}
