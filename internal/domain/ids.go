// Package domain implements the stateful combat model described in the
// Domain State Machine component: it is a pure function of the decoded
// event stream onto an in-memory Environment/Encounter/LiveData model.
package domain

// ObjectID identifies an entity within a single Environment. Ephemeral —
// it is only valid until the next init-environment event and must never be
// carried across that boundary without translation through a CharID.
type ObjectID int64

// CharID identifies a player account-character across sessions and map
// transitions. Used to re-key a Player entry after its ObjectID changes.
type CharID int64

// SpeciesID identifies an NPC template (static reference into game data).
type SpeciesID int32

// SkillID identifies a skill (static reference into the skill database).
type SkillID int32

// StatusEffectID identifies a buff/debuff kind (static reference).
type StatusEffectID int32

// EffectInstanceID identifies one ephemeral application of a status effect.
type EffectInstanceID int32
