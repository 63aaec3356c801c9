package resources

import (
	"fmt"
	"os"

	"github.com/wardmeter/meter/internal/capture"
)

// LoadXORTable reads the deobfuscation table from disk: raw bytes, arbitrary
// length (§6 "Files on disk"). There is no structure to parse — the file
// content is the key material consumed directly by capture.XORTable.
func LoadXORTable(path string) (*capture.XORTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resources: read xor table %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("resources: xor table %s is empty", path)
	}
	return capture.NewXORTable(raw), nil
}
