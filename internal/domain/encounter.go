package domain

import "time"

// HitFlag is the low-nibble classification of a single damage event's modifier byte.
type HitFlag byte

const (
	HitNormal HitFlag = iota
	HitCritical
	HitMiss
	HitInvincible
	HitDot
	HitImmune
	HitImmuneSilenced
	HitFontSilenced
	HitDotCritical
	HitDodge
	HitReflect
	HitDamageShare
	HitDodgeHit
)

func (f HitFlag) Valid() bool { return f <= HitDodgeHit }

func (f HitFlag) String() string {
	switch f {
	case HitNormal:
		return "Normal"
	case HitCritical:
		return "Critical"
	case HitMiss:
		return "Miss"
	case HitInvincible:
		return "Invincible"
	case HitDot:
		return "Dot"
	case HitImmune:
		return "Immune"
	case HitImmuneSilenced:
		return "ImmuneSilenced"
	case HitFontSilenced:
		return "FontSilenced"
	case HitDotCritical:
		return "DotCritical"
	case HitDodge:
		return "Dodge"
	case HitReflect:
		return "Reflect"
	case HitDamageShare:
		return "DamageShare"
	case HitDodgeHit:
		return "DodgeHit"
	default:
		return "Unknown"
	}
}

// HitOption is the 3-bit positional classification of a damage event.
type HitOption byte

const (
	OptionNone HitOption = iota
	OptionBack
	OptionFront
	OptionFlank
)

func (o HitOption) Valid() bool { return o <= OptionFlank }

// DamagePoint is one (timestamp, damage) sample in a player's running series.
type DamagePoint struct {
	At     time.Time
	Damage int64
}

// CastEntry is one (timestamp, skill) sample in a player's cast history.
type CastEntry struct {
	At      time.Time
	SkillID SkillID
}

// Hit is a single recorded damage application against one skill's aggregate.
type Hit struct {
	At     time.Time
	Damage int64
	Flag   HitFlag
	Option HitOption
}

// SkillUsage is the per (player, skill) aggregate.
type SkillUsage struct {
	Name *string

	HitCount   int64
	CritCount  int64
	TotalDamage int64

	BackAttackCount  int64
	FrontAttackCount int64
	BrandHits        int64
	APHits           int64
	IdentityHits     int64

	Hits []Hit
}

// PlayerData is the per-player running combat aggregate for one Encounter.
type PlayerData struct {
	TotalDamage int64
	HitCount    int64

	BrandedDamage  int64
	APDamage       int64
	IdentityDamage int64

	// BrandedHits/APHits/IdentityHits are kept non-negative by construction
	// (the source data has one of these typed as a signed counter that can
	// stray negative; this model never decrements them).
	BrandedHits  int64
	APHits       int64
	IdentityHits int64

	DamageSeries []DamagePoint
	Casts        []CastEntry
	Skills       map[SkillID]*SkillUsage
}

func newPlayerData() *PlayerData {
	return &PlayerData{Skills: make(map[SkillID]*SkillUsage)}
}

// DealtDamage recomputes total damage from skill hit records — the
// quantified invariant that TotalDamage always equals the sum over every
// skill's individual hits.
func (p *PlayerData) DealtDamage() int64 {
	var total int64
	for _, s := range p.Skills {
		for _, h := range s.Hits {
			total += h.Damage
		}
	}
	return total
}

// TrackedBoss is one NPC designated as an encounter objective.
type TrackedBoss struct {
	Object  ObjectID
	Species SpeciesID
}

// Encounter is a time-bounded combat session scoped to exactly one Environment.
type Encounter struct {
	EnvironmentIndex int // positional index into Data.Environments

	Start time.Time
	End   time.Time

	FirstDamage *time.Time
	LastDamage  *time.Time

	Players map[ObjectID]*PlayerData
	Tracked []TrackedBoss

	Wipe  bool
	Clear bool
}

func NewEncounter(environmentIndex int, start time.Time) *Encounter {
	return &Encounter{
		EnvironmentIndex: environmentIndex,
		Start:            start,
		Players:          make(map[ObjectID]*PlayerData),
	}
}

func (e *Encounter) player(id ObjectID) *PlayerData {
	p, ok := e.Players[id]
	if !ok {
		p = newPlayerData()
		e.Players[id] = p
	}
	return p
}

// HasQualifyingActivity reports whether this Encounter has at least one
// damage event and at least one player — the overlay's visibility filter (§6).
func (e *Encounter) HasQualifyingActivity() bool {
	return e.FirstDamage != nil && len(e.Players) > 0
}

// DurationSeconds is the encounter's elapsed time used for DPS computation.
func (e *Encounter) DurationSeconds() float64 {
	end := e.End
	if end.IsZero() {
		if e.LastDamage != nil {
			end = *e.LastDamage
		} else {
			end = e.Start
		}
	}
	d := end.Sub(e.Start).Seconds()
	if d <= 0 {
		return 1 // avoid divide-by-zero for instantaneous encounters
	}
	return d
}
