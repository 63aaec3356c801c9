package domain

// BossInfo is the live HP state of a tracked boss, updated by damage events
// and broadcast for the overlay's HP bar.
type BossInfo struct {
	MaxHP   int64
	CurHP   int64
	MaxBars *int
}

// Percentage returns CurHP/MaxHP clamped to [0,1], or 0 if MaxHP is unknown.
func (b *BossInfo) Percentage() float64 {
	if b.MaxHP <= 0 {
		return 0
	}
	pct := float64(b.CurHP) / float64(b.MaxHP)
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// Bars returns the current bar count (percentage * MaxBars), or nil if
// MaxBars was never reported.
func (b *BossInfo) Bars() *int {
	if b.MaxBars == nil {
		return nil
	}
	n := int(b.Percentage() * float64(*b.MaxBars))
	return &n
}

// BuffState is one applied status effect: its stack count and who applied it.
type BuffState struct {
	Stacks    int32
	Applicant ObjectID
}

// LiveData is process-wide transient state not tied to any single Encounter.
// It is cleared in full on every init-environment event.
type LiveData struct {
	Tracked         map[ObjectID]*BossInfo
	RecentlyTracked *ObjectID

	// Parties is keyed by ObjectID when the player is resolvable within the
	// current Environment, falling back to a CharID-derived key (shifted
	// into a disjoint range) when it is not — see PartyKeyForChar.
	Parties map[int64]int32

	// Buffs maps target ObjectID -> status-effect ID -> applied state.
	// The inner map is iterated in ID order by the brand-classification
	// search (damage.go), matching the early-termination optimization
	// described in §4.3.
	Buffs map[ObjectID]map[StatusEffectID]BuffState

	InstanceIDLookup map[EffectInstanceID]StatusEffectID
}

func NewLiveData() *LiveData {
	return &LiveData{
		Tracked:          make(map[ObjectID]*BossInfo),
		Parties:          make(map[int64]int32),
		Buffs:            make(map[ObjectID]map[StatusEffectID]BuffState),
		InstanceIDLookup: make(map[EffectInstanceID]StatusEffectID),
	}
}

// charPartyKeyOffset disjoints CharID-derived party keys from ObjectID keys,
// which both live in the int64 space; a raw CharID could otherwise collide
// with a legitimate ObjectID.
const charPartyKeyOffset = int64(1) << 62

// PartyKeyForObject returns the Parties map key for a resolvable ObjectID.
func PartyKeyForObject(id ObjectID) int64 { return int64(id) }

// PartyKeyForChar returns the Parties map key used as a fallback when no
// ObjectID is resolvable yet for a character.
func PartyKeyForChar(id CharID) int64 { return charPartyKeyOffset + int64(id) }

func (ld *LiveData) buffsFor(target ObjectID) map[StatusEffectID]BuffState {
	m, ok := ld.Buffs[target]
	if !ok {
		m = make(map[StatusEffectID]BuffState)
		ld.Buffs[target] = m
	}
	return m
}
