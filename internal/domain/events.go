package domain

// Event is implemented by every decoded packet event the schema decoder
// hands to Machine.Apply. It carries no behavior — dispatch is a type switch
// in handlers.go, matching the event -> behavior contract table in §4.3.
type Event interface{ isEvent() }

type InitEnvironment struct {
	POV ObjectID
}

func (InitEnvironment) isEvent() {}

type InitLocalPlayer struct {
	CharID CharID
}

func (InitLocalPlayer) isEvent() {}

type NewPlayer struct {
	Object    ObjectID
	Name      string
	Class     int32
	GearLevel float32
	CharID    *CharID
}

func (NewPlayer) isEvent() {}

// InitPlayer is identical in shape to NewPlayer but triggers the party-key
// migration step described in §4.3 ("on init, if a party mapping exists
// under the character ID key, migrate that mapping to the new object ID").
type InitPlayer struct {
	Object    ObjectID
	Name      string
	Class     int32
	GearLevel float32
	CharID    *CharID
}

func (InitPlayer) isEvent() {}

type NewNPC struct {
	Object  ObjectID
	Species SpeciesID
	Name    string
}

func (NewNPC) isEvent() {}

type NewProjectile struct {
	Object ObjectID
	Owner  ObjectID
}

func (NewProjectile) isEvent() {}

// DamageEvent is one per-target entry inside a damage-notify batch.
type DamageEvent struct {
	Target   ObjectID
	Damage   int64
	CurHP    int64
	MaxHP    int64
	Modifier byte
}

type SkillDamageNotify struct {
	Source ObjectID
	Skill  SkillID
	Events []DamageEvent
}

func (SkillDamageNotify) isEvent() {}

// SkillDamageAbnormalMoveNotify carries the same payload shape as
// SkillDamageNotify (§4.3 groups them under identical processing).
type SkillDamageAbnormalMoveNotify struct {
	Source ObjectID
	Skill  SkillID
	Events []DamageEvent
}

func (SkillDamageAbnormalMoveNotify) isEvent() {}

type StatusEffectAdd struct {
	Object    ObjectID
	Effect    StatusEffectID
	Instance  EffectInstanceID
	Stacks    int32
	Applicant ObjectID
}

func (StatusEffectAdd) isEvent() {}

// PartyStatusEffectAdd is identical to StatusEffectAdd except Object names a
// CharID that must be resolved to a distinct party member's ObjectID first.
type PartyStatusEffectAdd struct {
	Char      CharID
	Effect    StatusEffectID
	Instance  EffectInstanceID
	Stacks    int32
	Applicant ObjectID
}

func (PartyStatusEffectAdd) isEvent() {}

type StatusEffectRemove struct {
	Instances []EffectInstanceID
}

func (StatusEffectRemove) isEvent() {}

type PartyStatusEffectRemove struct {
	Instances []EffectInstanceID
}

func (PartyStatusEffectRemove) isEvent() {}

type PartyStatusEffectResult struct {
	Object        ObjectID
	PartyInstance int32
}

func (PartyStatusEffectResult) isEvent() {}

type PartyMember struct {
	CharID    CharID
	Name      string
	Class     int32
	GearLevel float32
}

type PartyInfo struct {
	Members       []PartyMember
	PartyInstance int32
}

func (PartyInfo) isEvent() {}

type MigrationExecute struct {
	CharID1 CharID
	CharID2 CharID
}

func (MigrationExecute) isEvent() {}

type TriggerStartNotify struct {
	Clear bool
	Wipe  bool
}

func (TriggerStartNotify) isEvent() {}

type RaidBossKill struct{}

func (RaidBossKill) isEvent() {}

type RaidResult struct{}

func (RaidResult) isEvent() {}

type BossBattleStatus struct{}

func (BossBattleStatus) isEvent() {}
