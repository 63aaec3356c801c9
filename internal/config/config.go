package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Capture   CaptureConfig   `toml:"capture"`
	Resources ResourcesConfig `toml:"resources"`
	Schema    SchemaConfig    `toml:"schema"`
	Encounter EncounterConfig `toml:"encounter"`
	Logging   LoggingConfig   `toml:"logging"`
}

// CaptureConfig describes how the target process and its TCP connections are found.
type CaptureConfig struct {
	WindowClass     string        `toml:"window_class"`      // Win32 class name of the game client's top-level window
	RemotePort      int           `toml:"remote_port"`        // game server port (e.g. 6040)
	RefreshInterval time.Duration `toml:"refresh_interval"`   // how often the TCP table is re-queried
	SelectTimeout   time.Duration `toml:"select_timeout"`     // max wait per I/O loop iteration
	MaxPendingReads int           `toml:"max_pending_reads"`  // per-socket read buffer depth
}

type ResourcesConfig struct {
	XorTablePath       string `toml:"xor_table_path"`
	DecompressorLib    string `toml:"decompressor_lib"`     // path to the native Oodle-compatible library
	DecompressorState  string `toml:"decompressor_state"`   // compressed state blob
	SkillDatabasePath  string `toml:"skill_database_path"`
	BrandConfigPath    string `toml:"brand_config_path"`    // YAML: AP/identity/brand status-effect ID sets
	BossListPath       string `toml:"boss_list_path"`       // YAML: boss species ID list
}

// SchemaConfig fields are not read by the program: the schema decoders use
// their own per-array maximums, and the capture pipeline's arena capacity is
// fixed at 64 KiB in cmd/wardmeter.
type SchemaConfig struct {
	MaxArrayLen  int `toml:"max_array_len"`  // statically declared maximum for length-prefixed arrays
	ArenaSize    int `toml:"arena_size"`     // bytes reserved per frame in the scratch arena
	MaxRecursion int `toml:"max_recursion"`  // bound on sub-packet nesting depth
}

type EncounterConfig struct {
	ResetDelay            time.Duration `toml:"reset_delay"`               // settle window after a raid outcome trigger (§4.3)
	MaxProjectileChainLen int           `toml:"max_projectile_chain_len"`  // cap on source-resolution traversal (§9 open question)
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Capture: CaptureConfig{
			WindowClass:     "MapleStoryClass",
			RemotePort:      6040,
			RefreshInterval: 250 * time.Millisecond,
			SelectTimeout:   250 * time.Millisecond,
			MaxPendingReads: 64,
		},
		Resources: ResourcesConfig{
			XorTablePath:      "data/xor_table.bin",
			DecompressorLib:   "data/oodnet.dll",
			DecompressorState: "data/oodle_state.bin",
			SkillDatabasePath: "data/skill_db.snappy",
			BrandConfigPath:   "data/buff_classes.yaml",
			BossListPath:      "data/boss_species.yaml",
		},
		Schema: SchemaConfig{
			MaxArrayLen:  4096,
			ArenaSize:    1 << 16, // 64 KiB per frame
			MaxRecursion: 16,
		},
		Encounter: EncounterConfig{
			ResetDelay:            3 * time.Second,
			MaxProjectileChainLen: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
