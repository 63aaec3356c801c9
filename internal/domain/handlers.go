package domain

import (
	"time"

	"go.uber.org/zap"
)

func (m *Machine) now() time.Time { return m.Clock() }

// Apply decodes the event type and mutates the model under lock, per the
// event -> behavior contract table in §4.3. Unknown event types are a
// programmer error (the schema dispatcher only ever produces the types
// declared in events.go) and are logged, not panicked on.
func (m *Machine) Apply(ev Event) {
	m.WithLock(func(d *Data) {
		switch e := ev.(type) {
		case InitEnvironment:
			m.applyInitEnvironment(d, e)
		case InitLocalPlayer:
			m.applyInitLocalPlayer(d, e)
		case NewPlayer:
			m.applyNewOrInitPlayer(d, e.Object, e.Name, e.Class, e.GearLevel, e.CharID, false)
		case InitPlayer:
			m.applyNewOrInitPlayer(d, e.Object, e.Name, e.Class, e.GearLevel, e.CharID, true)
		case NewNPC:
			m.applyNewNPC(d, e)
		case NewProjectile:
			m.applyNewProjectile(d, e)
		case SkillDamageNotify:
			m.applyDamage(d, e.Source, e.Skill, e.Events)
		case SkillDamageAbnormalMoveNotify:
			m.applyDamage(d, e.Source, e.Skill, e.Events)
		case StatusEffectAdd:
			m.applyStatusEffectAdd(d, e.Object, e.Effect, e.Instance, e.Stacks, e.Applicant)
		case PartyStatusEffectAdd:
			m.applyPartyStatusEffectAdd(d, e)
		case StatusEffectRemove:
			m.applyStatusEffectRemove(d, e.Instances)
		case PartyStatusEffectRemove:
			m.applyStatusEffectRemove(d, e.Instances)
		case PartyStatusEffectResult:
			m.applyPartyStatusEffectResult(d, e)
		case PartyInfo:
			m.applyPartyInfo(d, e)
		case MigrationExecute:
			m.applyMigrationExecute(d, e)
		case TriggerStartNotify:
			m.applyTriggerStartNotify(d, e)
		case RaidBossKill, RaidResult, BossBattleStatus:
			m.scheduleReset()
		default:
			m.log.Warn("dropped unhandled event type", zap.String("type", "unknown"))
		}
	})
}

// applyInitEnvironment appends a new Environment, carries the POV player
// entry forward under the new POV ObjectID, clears LiveData, and opens a
// fresh Encounter in the new Environment (§4.3, §3 lifecycles).
func (m *Machine) applyInitEnvironment(d *Data, e InitEnvironment) {
	prev := d.CurrentEnvironment()
	next := NewEnvironment()
	pov := e.POV
	next.POV = &pov

	if prev != nil && prev.POV != nil {
		if oldPlayer, ok := prev.Players[*prev.POV]; ok {
			carried := *oldPlayer
			next.Players[pov] = &carried
			next.POVCharID = prev.POVCharID
		}
	}

	d.Environments = append(d.Environments, next)
	d.Live = NewLiveData()

	enc := NewEncounter(d.currentEnvironmentIndex(), m.now())
	d.Encounters = append(d.Encounters, enc)
}

// applyInitLocalPlayer records the POV's CharID, re-keying an existing
// entry under a different ObjectID if one is found (§4.3).
func (m *Machine) applyInitLocalPlayer(d *Data, e InitLocalPlayer) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}
	env.POVCharID = &e.CharID

	for obj, p := range env.Players {
		if p.CharID != nil && *p.CharID == e.CharID && env.POV != nil && obj != *env.POV {
			delete(env.Players, obj)
			env.Players[*env.POV] = p
			rekeyParty(d.Live, obj, *env.POV)
			return
		}
	}
}

func (m *Machine) applyNewOrInitPlayer(d *Data, obj ObjectID, name string, class int32, gear float32, charID *CharID, isInit bool) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}
	p, ok := env.Players[obj]
	if !ok {
		p = &Player{}
		env.Players[obj] = p
	}
	if name != "" {
		p.Name = name
	}
	if class != 0 {
		p.Class = class
	}
	if gear != 0 {
		p.GearLevel = gear
	}
	if charID != nil {
		p.CharID = charID
	}

	if isInit && charID != nil {
		// Migrate a party mapping recorded under the CharID key to the new ObjectID.
		key := PartyKeyForChar(*charID)
		if inst, ok := d.Live.Parties[key]; ok {
			delete(d.Live.Parties, key)
			d.Live.Parties[PartyKeyForObject(obj)] = inst
		}

		// Drop the CharID-keyed placeholder entry applyPartyInfo may have
		// created before this player's real ObjectID was known.
		if placeholder := PlaceholderObjectID(*charID); placeholder != obj {
			delete(env.Players, placeholder)
		}
	}
}

func (m *Machine) applyNewNPC(d *Data, e NewNPC) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}
	env.NPCs[e.Object] = &NPC{Species: e.Species, Name: e.Name}

	if m.bosses == nil || !m.bosses.IsBossSpecies(e.Species) {
		return
	}
	enc := d.CurrentEncounter()
	if enc == nil || len(enc.Tracked) == 0 {
		enc = NewEncounter(d.currentEnvironmentIndex(), m.now())
		d.Encounters = append(d.Encounters, enc)
	}
	enc.Tracked = append(enc.Tracked, TrackedBoss{Object: e.Object, Species: e.Species})
}

func (m *Machine) applyNewProjectile(d *Data, e NewProjectile) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}
	env.Projectiles[e.Object] = &Projectile{Owner: e.Owner}
}

func (m *Machine) applyStatusEffectAdd(d *Data, obj ObjectID, effect StatusEffectID, instance EffectInstanceID, stacks int32, applicant ObjectID) {
	d.Live.buffsFor(obj)[effect] = BuffState{Stacks: stacks, Applicant: applicant}
	d.Live.InstanceIDLookup[instance] = effect
}

// applyPartyStatusEffectAdd resolves the CharID to the ObjectID of a
// distinct player in the current Environment before recording the buff.
func (m *Machine) applyPartyStatusEffectAdd(d *Data, e PartyStatusEffectAdd) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}
	for obj, p := range env.Players {
		if p.CharID != nil && *p.CharID == e.Char {
			m.applyStatusEffectAdd(d, obj, e.Effect, e.Instance, e.Stacks, e.Applicant)
			return
		}
	}
}

func (m *Machine) applyStatusEffectRemove(d *Data, instances []EffectInstanceID) {
	for _, inst := range instances {
		effect, ok := d.Live.InstanceIDLookup[inst]
		if !ok {
			continue
		}
		delete(d.Live.InstanceIDLookup, inst)
		for _, buffs := range d.Live.Buffs {
			delete(buffs, effect)
		}
	}
}

func (m *Machine) applyPartyStatusEffectResult(d *Data, e PartyStatusEffectResult) {
	d.Live.Parties[PartyKeyForObject(e.Object)] = e.PartyInstance
}

// applyPartyInfo finds-or-creates a player entry per member, backfilling
// name/class/gear only where missing, and unconditionally records party
// membership (§4.3). needsPOVID mirrors the source's pov()-is-none check:
// computed once before the member loop, it is true only when no player
// entry exists yet at the current POV ObjectID.
func (m *Machine) applyPartyInfo(d *Data, e PartyInfo) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}

	needsPOVID := true
	if env.POV != nil {
		if _, ok := env.Players[*env.POV]; ok {
			needsPOVID = false
		}
	}

	for _, mem := range e.Members {
		var target ObjectID
		found := false
		for o, p := range env.Players {
			if p.CharID != nil && *p.CharID == mem.CharID {
				target = o
				found = true
				break
			}
		}
		if !found {
			if needsPOVID && env.POV != nil && env.POVCharID != nil && *env.POVCharID == mem.CharID {
				target = *env.POV
			} else {
				// No resolvable ObjectID yet: park the entry under a CharID
				// placeholder so applyNewOrInitPlayer's migration (and a later
				// party-info call) picks it up.
				target = PlaceholderObjectID(mem.CharID)
			}
		}

		p, ok := env.Players[target]
		if !ok {
			p = &Player{}
			env.Players[target] = p
		}
		charID := mem.CharID
		if p.Name == "" {
			p.Name = mem.Name
		}
		if p.Class == 0 {
			p.Class = mem.Class
		}
		if p.GearLevel == 0 {
			p.GearLevel = mem.GearLevel
		}
		if p.CharID == nil {
			p.CharID = &charID
		}

		d.Live.Parties[PartyKeyForObject(target)] = e.PartyInstance
	}
}

// applyMigrationExecute computes min(char1, char2) as the POV CharID if the
// POV player is not yet resolved, and re-keys a matching entry.
func (m *Machine) applyMigrationExecute(d *Data, e MigrationExecute) {
	env := d.CurrentEnvironment()
	if env == nil {
		return
	}
	if env.POVCharID == nil {
		pov := e.CharID1
		if e.CharID2 < pov {
			pov = e.CharID2
		}
		env.POVCharID = &pov
	}
	if env.POV == nil {
		return
	}
	for obj, p := range env.Players {
		if p.CharID != nil && *p.CharID == *env.POVCharID && obj != *env.POV {
			delete(env.Players, obj)
			env.Players[*env.POV] = p
			rekeyParty(d.Live, obj, *env.POV)
			return
		}
	}
}

func (m *Machine) applyTriggerStartNotify(d *Data, e TriggerStartNotify) {
	enc := d.CurrentEncounter()
	if enc == nil {
		return
	}
	if e.Clear {
		enc.Clear = true
	}
	if e.Wipe {
		enc.Wipe = true
	}
}

func rekeyParty(live *LiveData, from, to ObjectID) {
	if inst, ok := live.Parties[PartyKeyForObject(from)]; ok {
		delete(live.Parties, PartyKeyForObject(from))
		live.Parties[PartyKeyForObject(to)] = inst
	}
}
