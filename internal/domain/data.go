package domain

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Data is the aggregate root: an append-only sequence of Environments, an
// append-only sequence of Encounters, and one LiveData. The tail of each
// sequence is "current".
type Data struct {
	Environments []*Environment
	Encounters   []*Encounter
	Live         *LiveData
}

func newData() *Data {
	d := &Data{Live: NewLiveData()}
	return d
}

func (d *Data) currentEnvironmentIndex() int { return len(d.Environments) - 1 }

func (d *Data) CurrentEnvironment() *Environment {
	if len(d.Environments) == 0 {
		return nil
	}
	return d.Environments[len(d.Environments)-1]
}

func (d *Data) CurrentEncounter() *Encounter {
	if len(d.Encounters) == 0 {
		return nil
	}
	return d.Encounters[len(d.Encounters)-1]
}

// SkillLookup resolves skill metadata for damage-source synthesis and
// skill-name resolution (§4.3 step 2 and step 3.d). Implemented by
// internal/resources.SkillDB; declared here so domain has no import on it.
type SkillLookup interface {
	ClassForSkill(id SkillID) (int32, bool)
	NameForSkill(id SkillID) (string, bool)
}

// BuffClassifier resolves the fixed status-effect ID sets used for AP/identity
// buff and brand classification (§4.3 step 3.e/3.f). Implemented by
// internal/resources from a YAML-configured set, falling back to the
// built-in defaults in classify.go if unset.
type BuffClassifier interface {
	IsAPBuff(id StatusEffectID) bool
	IsIdentityBuff(id StatusEffectID) bool
	IsBrand(id StatusEffectID) bool
	MaxBrandID() StatusEffectID
}

// BossRegistry resolves whether a species ID names a raid boss, driving the
// new-NPC tracked-boss rule (§4.3). Implemented by internal/resources from
// the configured boss species ID list.
type BossRegistry interface {
	IsBossSpecies(id SpeciesID) bool
}

// Machine is the shared, mutex-guarded combat model. Any mutation (from the
// capture pipeline or a reset timer) and any read (from the overlay) acquires
// the same mutex; critical sections never perform I/O (§5).
type Machine struct {
	mu   sync.Mutex
	data *Data

	skills SkillLookup
	classes BuffClassifier
	bosses BossRegistry
	log    *zap.Logger

	resetDelay            time.Duration
	maxProjectileChainLen  int

	// Clock is swappable in tests; defaults to time.Now.
	Clock func() time.Time

	// repaint is signalled (non-blocking) after every mutation so the UI
	// thread can request a redraw, mirroring the source's render-context
	// handshake (§5).
	repaint chan struct{}

	// pendingResets tracks outstanding deferred-rotation timers so a second
	// raid-outcome event in the same window doesn't stack redundant timers.
	pendingResets int
}

type MachineConfig struct {
	ResetDelay            time.Duration
	MaxProjectileChainLen int
}

func NewMachine(cfg MachineConfig, skills SkillLookup, classes BuffClassifier, bosses BossRegistry, log *zap.Logger) *Machine {
	m := &Machine{
		data:                  newData(),
		skills:                skills,
		classes:               classes,
		bosses:                bosses,
		log:                   log,
		resetDelay:            cfg.ResetDelay,
		maxProjectileChainLen: cfg.MaxProjectileChainLen,
		Clock:                 time.Now,
		repaint:               make(chan struct{}, 1),
	}
	return m
}

// Repaint returns the channel the UI thread selects on to know a redraw is due.
func (m *Machine) Repaint() <-chan struct{} { return m.repaint }

func (m *Machine) signalRepaint() {
	select {
	case m.repaint <- struct{}{}:
	default:
	}
}

// WithLock runs fn with the model locked for mutation. Every event handler
// goes through this so a single frame's effects are applied atomically.
func (m *Machine) WithLock(fn func(*Data)) {
	m.mu.Lock()
	fn(m.data)
	m.mu.Unlock()
	m.signalRepaint()
}

// View runs fn with the model locked for reading. Used by the overlay.
func (m *Machine) View(fn func(*Data)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.data)
}
