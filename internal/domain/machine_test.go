package domain

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubSkills struct {
	class map[SkillID]int32
	name  map[SkillID]string
}

func (s stubSkills) ClassForSkill(id SkillID) (int32, bool) {
	c, ok := s.class[id]
	return c, ok
}

func (s stubSkills) NameForSkill(id SkillID) (string, bool) {
	n, ok := s.name[id]
	return n, ok
}

type stubBosses struct {
	species map[SpeciesID]bool
}

func (s stubBosses) IsBossSpecies(id SpeciesID) bool { return s.species[id] }

func newTestMachine(now time.Time) *Machine {
	m := NewMachine(
		MachineConfig{ResetDelay: 3 * time.Second, MaxProjectileChainLen: 8},
		stubSkills{class: map[SkillID]int32{100: 1}, name: map[SkillID]string{100: "Slash"}},
		DefaultBuffClassifier(),
		stubBosses{species: map[SpeciesID]bool{999: true}},
		zap.NewNop(),
	)
	m.Clock = func() time.Time { return now }
	return m
}

func TestInitEnvironmentStartsFreshEncounter(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})

	m.View(func(d *Data) {
		if len(d.Environments) != 1 {
			t.Fatalf("want 1 environment, got %d", len(d.Environments))
		}
		if len(d.Encounters) != 1 {
			t.Fatalf("want 1 encounter, got %d", len(d.Encounters))
		}
		if d.Environments[0].POV == nil || *d.Environments[0].POV != 1 {
			t.Fatalf("POV not recorded")
		}
	})
}

func TestInitEnvironmentCarriesPOVPlayerForward(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1, Name: "Hero", Class: 5})
	m.Apply(InitEnvironment{POV: 2})

	m.View(func(d *Data) {
		env := d.CurrentEnvironment()
		p, ok := env.Players[2]
		if !ok {
			t.Fatalf("expected carried-forward player under new POV object id")
		}
		if p.Name != "Hero" {
			t.Fatalf("carried player lost its name: %+v", p)
		}
	})
}

func TestDamageInvariant_TotalEqualsSumOfSkillHits(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1, Name: "Hero"})

	m.Apply(SkillDamageNotify{
		Source: 1,
		Skill:  100,
		Events: []DamageEvent{
			{Target: 50, Damage: 1000, CurHP: 9000, MaxHP: 10000, Modifier: byte(HitNormal)},
			{Target: 50, Damage: 2000, CurHP: 7000, MaxHP: 10000, Modifier: byte(HitCritical)},
		},
	})

	m.View(func(d *Data) {
		enc := d.CurrentEncounter()
		pd := enc.Players[1]
		if pd.TotalDamage != 3000 {
			t.Fatalf("want total 3000, got %d", pd.TotalDamage)
		}
		if got := pd.DealtDamage(); got != pd.TotalDamage {
			t.Fatalf("DealtDamage() = %d, want %d", got, pd.TotalDamage)
		}
	})
}

func TestDamageOverkillDoesNotUnderflow(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1})

	m.Apply(SkillDamageNotify{
		Source: 1,
		Skill:  100,
		Events: []DamageEvent{
			// cur_hp went 200 below zero: overkill=200, effective = 500-200 = 300
			{Target: 50, Damage: 500, CurHP: -200, MaxHP: 1000, Modifier: byte(HitNormal)},
		},
	})

	m.View(func(d *Data) {
		pd := d.CurrentEncounter().Players[1]
		if pd.TotalDamage != 300 {
			t.Fatalf("want 300 after overkill subtraction, got %d", pd.TotalDamage)
		}
	})
}

func TestDamageSynthesizesSourceFromSkillClass(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	// no NewPlayer for object 77: must be synthesized via skill class lookup.

	m.Apply(SkillDamageNotify{
		Source: 77,
		Skill:  100,
		Events: []DamageEvent{{Target: 50, Damage: 10, CurHP: 990, MaxHP: 1000, Modifier: byte(HitNormal)}},
	})

	m.View(func(d *Data) {
		env := d.CurrentEnvironment()
		p, ok := env.Players[77]
		if !ok {
			t.Fatalf("expected synthesized player for unresolved source")
		}
		if p.Class != 1 {
			t.Fatalf("synthesized player class = %d, want 1", p.Class)
		}
	})
}

func TestDamageDropsEventsWhenSourceUnresolvable(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})

	m.Apply(SkillDamageNotify{
		Source: 77,
		Skill:  9999, // unknown skill, no class mapping
		Events: []DamageEvent{{Target: 50, Damage: 10, CurHP: 990, MaxHP: 1000, Modifier: byte(HitNormal)}},
	})

	m.View(func(d *Data) {
		if len(d.CurrentEnvironment().Players) != 0 {
			t.Fatalf("expected no synthesized player when skill class is unresolvable")
		}
	})
}

func TestInvalidHitFlagEventIsDropped(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1})

	m.Apply(SkillDamageNotify{
		Source: 1,
		Skill:  100,
		Events: []DamageEvent{{Target: 50, Damage: 10, CurHP: 990, MaxHP: 1000, Modifier: 0xFF}},
	})

	m.View(func(d *Data) {
		pd := d.CurrentEncounter().Players[1]
		if pd.TotalDamage != 0 {
			t.Fatalf("invalid hit flag should drop the event, got damage %d", pd.TotalDamage)
		}
	})
}

func TestBrandClassification(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1})
	m.Apply(StatusEffectAdd{Object: 50, Effect: 210230, Instance: 1, Stacks: 1, Applicant: 1})

	m.Apply(SkillDamageNotify{
		Source: 1,
		Skill:  100,
		Events: []DamageEvent{{Target: 50, Damage: 100, CurHP: 900, MaxHP: 1000, Modifier: byte(HitNormal)}},
	})

	m.View(func(d *Data) {
		pd := d.CurrentEncounter().Players[1]
		if pd.BrandedHits != 1 || pd.BrandedDamage != 100 {
			t.Fatalf("expected branded hit recorded, got %+v", pd)
		}
	})
}

func TestNewNPCOpensEncounterOnEmptyTracked(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})

	before := 0
	m.View(func(d *Data) { before = len(d.Encounters) })

	m.Apply(NewNPC{Object: 500, Species: 999, Name: "Dragon"})

	m.View(func(d *Data) {
		// An empty-tracked current encounter always gets a new one opened
		// before the boss is appended, even if it was itself freshly opened.
		if len(d.Encounters) != before+1 {
			t.Fatalf("want %d encounters after tracked-boss discovery, got %d", before+1, len(d.Encounters))
		}
		if len(d.CurrentEncounter().Tracked) != 1 {
			t.Fatalf("expected tracked boss recorded")
		}
	})
}

func TestPartyInfoParksUnresolvedMemberUnderCharIDPlaceholder(t *testing.T) {
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1, Name: "Hero"})

	m.Apply(PartyInfo{
		PartyInstance: 7,
		Members: []PartyMember{
			{CharID: 500, Name: "Remote", Class: 3, GearLevel: 1500},
		},
	})

	m.View(func(d *Data) {
		env := d.CurrentEnvironment()
		p, ok := env.Players[PlaceholderObjectID(500)]
		if !ok {
			t.Fatalf("expected unresolved member parked under a CharID placeholder")
		}
		if p.Name != "Remote" || p.Class != 3 {
			t.Fatalf("placeholder player missing backfilled fields: %+v", p)
		}
		if d.Live.Parties[PartyKeyForChar(500)] != 7 {
			t.Fatalf("expected party membership recorded under the CharID key, got %+v", d.Live.Parties)
		}
	})

	// A subsequent InitPlayer for the same character migrates the placeholder.
	charID := CharID(500)
	m.Apply(InitPlayer{Object: 42, Name: "Remote", CharID: &charID})

	m.View(func(d *Data) {
		env := d.CurrentEnvironment()
		if _, ok := env.Players[PlaceholderObjectID(500)]; ok {
			t.Fatalf("expected placeholder player entry removed after migration")
		}
		if d.Live.Parties[PartyKeyForObject(42)] != 7 {
			t.Fatalf("expected party membership migrated to the real ObjectID, got %+v", d.Live.Parties)
		}
	})
}

func TestPartyInfoUnifiesWithPOVOnlyWhenCharIDMatches(t *testing.T) {
	// No player entry exists at the POV object id yet (the common case right
	// after init-local-player but before init-pc renders the POV itself), so
	// needsPOVID is true; only a member whose CharID equals the recorded
	// POVCharID may be unified onto the POV's ObjectID.
	m := newTestMachine(time.Unix(0, 0))
	m.Apply(InitEnvironment{POV: 1})
	povChar := CharID(900)
	m.Apply(InitLocalPlayer{CharID: povChar})

	m.Apply(PartyInfo{
		PartyInstance: 3,
		Members: []PartyMember{
			{CharID: 501, Name: "Other", Class: 9}, // mismatched CharID
		},
	})

	m.View(func(d *Data) {
		env := d.CurrentEnvironment()
		if _, ok := env.Players[1]; ok {
			t.Fatalf("unrelated party member must not be unified onto the POV ObjectID")
		}
		if _, ok := env.Players[PlaceholderObjectID(501)]; !ok {
			t.Fatalf("unrelated member should have been parked under its own CharID placeholder")
		}
	})

	m2 := newTestMachine(time.Unix(0, 0))
	m2.Apply(InitEnvironment{POV: 1})
	m2.Apply(InitLocalPlayer{CharID: povChar})

	m2.Apply(PartyInfo{
		PartyInstance: 4,
		Members: []PartyMember{
			{CharID: povChar, Name: "Hero", Class: 2}, // matches POVCharID
		},
	})

	m2.View(func(d *Data) {
		env := d.CurrentEnvironment()
		p, ok := env.Players[1]
		if !ok || p.Name != "Hero" {
			t.Fatalf("matching party member should have been unified onto the POV ObjectID, got %+v (ok=%v)", p, ok)
		}
	})
}

func TestPartyKeysDoNotCollide(t *testing.T) {
	objKey := PartyKeyForObject(ObjectID(5))
	charKey := PartyKeyForChar(CharID(5))
	if objKey == charKey {
		t.Fatalf("object and char party keys collided: %d == %d", objKey, charKey)
	}
}

func TestResolveProjectileSourceTerminatesOnCycle(t *testing.T) {
	env := NewEnvironment()
	env.Projectiles[1] = &Projectile{Owner: 2}
	env.Projectiles[2] = &Projectile{Owner: 1} // cycle

	got := env.ResolveProjectileSource(1, 10)
	if got != 1 && got != 2 {
		t.Fatalf("expected termination within the cycle, got %d", got)
	}
}

func TestEncounterQualifyingActivity(t *testing.T) {
	enc := NewEncounter(0, time.Unix(0, 0))
	if enc.HasQualifyingActivity() {
		t.Fatalf("fresh encounter should not qualify")
	}
	now := time.Unix(1, 0)
	enc.FirstDamage = &now
	enc.Players[1] = newPlayerData()
	if !enc.HasQualifyingActivity() {
		t.Fatalf("encounter with damage and a player should qualify")
	}
}

// TestRaidOutcomeRotatesEncounterAfterDelay covers spec scenario 4: a
// raid-boss-kill event schedules a new Encounter after the reset delay,
// leaving the new tail empty and clearing LiveData's tracked-boss state.
func TestRaidOutcomeRotatesEncounterAfterDelay(t *testing.T) {
	m := NewMachine(
		MachineConfig{ResetDelay: 20 * time.Millisecond, MaxProjectileChainLen: 8},
		stubSkills{},
		DefaultBuffClassifier(),
		stubBosses{species: map[SpeciesID]bool{999: true}},
		zap.NewNop(),
	)

	m.Apply(InitEnvironment{POV: 1})
	m.Apply(NewPlayer{Object: 1, Name: "Hero"})
	m.Apply(NewNPC{Object: 500, Species: 999, Name: "Dragon"})
	m.Apply(SkillDamageNotify{
		Source: 1,
		Skill:  100,
		Events: []DamageEvent{{Target: 500, Damage: 100, CurHP: 900, MaxHP: 1000, Modifier: byte(HitNormal)}},
	})

	var before int
	m.View(func(d *Data) { before = len(d.Encounters) })

	m.Apply(RaidBossKill{})

	deadline := time.Now().Add(2 * time.Second)
	for {
		var rotated bool
		m.View(func(d *Data) { rotated = len(d.Encounters) == before+1 })
		if rotated {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("encounter did not rotate within the deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.View(func(d *Data) {
		tail := d.CurrentEncounter()
		if len(tail.Tracked) != 0 {
			t.Fatalf("new encounter should start with no tracked bosses, got %d", len(tail.Tracked))
		}
		if len(tail.Players) != 0 {
			t.Fatalf("new encounter should start with no players, got %d", len(tail.Players))
		}
		if len(d.Live.Tracked) != 0 {
			t.Fatalf("LiveData.Tracked should be cleared on rotation, got %d entries", len(d.Live.Tracked))
		}
	})
}

// TestRaidOutcomeDoesNotStackResets covers scheduleReset's dedup guard: a second
// raid-outcome event inside the same settle window must not arm a second
// timer (which would otherwise rotate twice).
func TestRaidOutcomeDoesNotStackResets(t *testing.T) {
	m := NewMachine(
		MachineConfig{ResetDelay: 20 * time.Millisecond, MaxProjectileChainLen: 8},
		stubSkills{},
		DefaultBuffClassifier(),
		stubBosses{},
		zap.NewNop(),
	)
	m.Apply(InitEnvironment{POV: 1})

	var before int
	m.View(func(d *Data) { before = len(d.Encounters) })

	m.Apply(RaidResult{})
	m.Apply(BossBattleStatus{})

	time.Sleep(200 * time.Millisecond)

	m.View(func(d *Data) {
		if len(d.Encounters) != before+1 {
			t.Fatalf("want exactly one rotation from two raid-outcome events in the same window, got %d new encounters", len(d.Encounters)-before)
		}
	})
}
