package schema

import "github.com/wardmeter/meter/internal/domain"

const (
	maxDamageEventsPerBatch = 32
	maxPartyMembers         = 8
)

func readObjectID(r *Reader) (domain.ObjectID, error) {
	v, err := r.U32()
	return domain.ObjectID(v), err
}

func readCharID(r *Reader) (domain.CharID, error) {
	v, err := r.U32()
	return domain.CharID(v), err
}

func readSpeciesID(r *Reader) (domain.SpeciesID, error) {
	v, err := r.I32()
	return domain.SpeciesID(v), err
}

func readSkillID(r *Reader) (domain.SkillID, error) {
	v, err := r.I32()
	return domain.SkillID(v), err
}

func readStatusEffectID(r *Reader) (domain.StatusEffectID, error) {
	v, err := r.I32()
	return domain.StatusEffectID(v), err
}

func readEffectInstanceID(r *Reader) (domain.EffectInstanceID, error) {
	v, err := r.I32()
	return domain.EffectInstanceID(v), err
}

func decodeInitEnvironment(r *Reader) (domain.Event, error) {
	pov, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	return domain.InitEnvironment{POV: pov}, nil
}

func decodeInitLocalPlayer(r *Reader) (domain.Event, error) {
	char, err := readCharID(r)
	if err != nil {
		return nil, err
	}
	return domain.InitLocalPlayer{CharID: char}, nil
}

func decodePlayerFields(r *Reader) (obj domain.ObjectID, name string, class int32, gear float32, charID *domain.CharID, err error) {
	if obj, err = readObjectID(r); err != nil {
		return
	}
	if name, err = r.String(); err != nil {
		return
	}
	classU, err2 := r.I32()
	if err2 != nil {
		err = err2
		return
	}
	class = classU
	if gear, err = r.F32(); err != nil {
		return
	}
	hasChar, err2 := r.Bool()
	if err2 != nil {
		err = err2
		return
	}
	cid, err2 := Optional(r, hasChar, readCharID)
	if err2 != nil {
		err = err2
		return
	}
	charID = cid
	return
}

func decodeNewPlayer(r *Reader) (domain.Event, error) {
	obj, name, class, gear, charID, err := decodePlayerFields(r)
	if err != nil {
		return nil, err
	}
	return domain.NewPlayer{Object: obj, Name: name, Class: class, GearLevel: gear, CharID: charID}, nil
}

func decodeInitPlayer(r *Reader) (domain.Event, error) {
	obj, name, class, gear, charID, err := decodePlayerFields(r)
	if err != nil {
		return nil, err
	}
	return domain.InitPlayer{Object: obj, Name: name, Class: class, GearLevel: gear, CharID: charID}, nil
}

func decodeNewNPC(r *Reader) (domain.Event, error) {
	obj, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	species, err := readSpeciesID(r)
	if err != nil {
		return nil, err
	}
	name, err := r.String()
	if err != nil {
		return nil, err
	}
	return domain.NewNPC{Object: obj, Species: species, Name: name}, nil
}

func decodeNewProjectile(r *Reader) (domain.Event, error) {
	obj, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	owner, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	return domain.NewProjectile{Object: obj, Owner: owner}, nil
}

func decodeDamageEvent(r *Reader) (domain.DamageEvent, error) {
	target, err := readObjectID(r)
	if err != nil {
		return domain.DamageEvent{}, err
	}
	dmg, err := r.PackedI64()
	if err != nil {
		return domain.DamageEvent{}, err
	}
	curHP, err := r.I64()
	if err != nil {
		return domain.DamageEvent{}, err
	}
	maxHP, err := r.I64()
	if err != nil {
		return domain.DamageEvent{}, err
	}
	modifier, err := r.U8()
	if err != nil {
		return domain.DamageEvent{}, err
	}
	return domain.DamageEvent{Target: target, Damage: dmg, CurHP: curHP, MaxHP: maxHP, Modifier: modifier}, nil
}

func decodeSkillDamageBatch(r *Reader) (domain.ObjectID, domain.SkillID, []domain.DamageEvent, error) {
	source, err := readObjectID(r)
	if err != nil {
		return 0, 0, nil, err
	}
	skill, err := readSkillID(r)
	if err != nil {
		return 0, 0, nil, err
	}
	count, err := r.U16()
	if err != nil {
		return 0, 0, nil, err
	}
	events, err := Array(r, int(count), maxDamageEventsPerBatch, decodeDamageEvent)
	if err != nil {
		return 0, 0, nil, err
	}
	return source, skill, events, nil
}

func decodeSkillDamageNotify(r *Reader) (domain.Event, error) {
	source, skill, events, err := decodeSkillDamageBatch(r)
	if err != nil {
		return nil, err
	}
	return domain.SkillDamageNotify{Source: source, Skill: skill, Events: events}, nil
}

func decodeSkillDamageAbnormalMoveNotify(r *Reader) (domain.Event, error) {
	source, skill, events, err := decodeSkillDamageBatch(r)
	if err != nil {
		return nil, err
	}
	return domain.SkillDamageAbnormalMoveNotify{Source: source, Skill: skill, Events: events}, nil
}

func decodeStatusEffectAdd(r *Reader) (domain.Event, error) {
	obj, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	effect, err := readStatusEffectID(r)
	if err != nil {
		return nil, err
	}
	instance, err := readEffectInstanceID(r)
	if err != nil {
		return nil, err
	}
	stacks, err := r.I32()
	if err != nil {
		return nil, err
	}
	applicant, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	return domain.StatusEffectAdd{Object: obj, Effect: effect, Instance: instance, Stacks: stacks, Applicant: applicant}, nil
}

func decodePartyStatusEffectAdd(r *Reader) (domain.Event, error) {
	char, err := readCharID(r)
	if err != nil {
		return nil, err
	}
	effect, err := readStatusEffectID(r)
	if err != nil {
		return nil, err
	}
	instance, err := readEffectInstanceID(r)
	if err != nil {
		return nil, err
	}
	stacks, err := r.I32()
	if err != nil {
		return nil, err
	}
	applicant, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	return domain.PartyStatusEffectAdd{Char: char, Effect: effect, Instance: instance, Stacks: stacks, Applicant: applicant}, nil
}

func decodeInstanceList(r *Reader) ([]domain.EffectInstanceID, error) {
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	return Array(r, int(count), 64, readEffectInstanceID)
}

func decodeStatusEffectRemove(r *Reader) (domain.Event, error) {
	ids, err := decodeInstanceList(r)
	if err != nil {
		return nil, err
	}
	return domain.StatusEffectRemove{Instances: ids}, nil
}

func decodePartyStatusEffectRemove(r *Reader) (domain.Event, error) {
	ids, err := decodeInstanceList(r)
	if err != nil {
		return nil, err
	}
	return domain.PartyStatusEffectRemove{Instances: ids}, nil
}

func decodePartyStatusEffectResult(r *Reader) (domain.Event, error) {
	obj, err := readObjectID(r)
	if err != nil {
		return nil, err
	}
	inst, err := r.I32()
	if err != nil {
		return nil, err
	}
	return domain.PartyStatusEffectResult{Object: obj, PartyInstance: inst}, nil
}

func decodePartyMember(r *Reader) (domain.PartyMember, error) {
	char, err := readCharID(r)
	if err != nil {
		return domain.PartyMember{}, err
	}
	name, err := r.String()
	if err != nil {
		return domain.PartyMember{}, err
	}
	class, err := r.I32()
	if err != nil {
		return domain.PartyMember{}, err
	}
	gear, err := r.F32()
	if err != nil {
		return domain.PartyMember{}, err
	}
	return domain.PartyMember{CharID: char, Name: name, Class: class, GearLevel: gear}, nil
}

func decodePartyInfo(r *Reader) (domain.Event, error) {
	inst, err := r.I32()
	if err != nil {
		return nil, err
	}
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	members, err := Array(r, int(count), maxPartyMembers, decodePartyMember)
	if err != nil {
		return nil, err
	}
	return domain.PartyInfo{Members: members, PartyInstance: inst}, nil
}

func decodeMigrationExecute(r *Reader) (domain.Event, error) {
	c1, err := readCharID(r)
	if err != nil {
		return nil, err
	}
	c2, err := readCharID(r)
	if err != nil {
		return nil, err
	}
	return domain.MigrationExecute{CharID1: c1, CharID2: c2}, nil
}

func decodeTriggerStartNotify(r *Reader) (domain.Event, error) {
	flags, err := r.U8()
	if err != nil {
		return nil, err
	}
	return domain.TriggerStartNotify{Clear: flags&0x01 != 0, Wipe: flags&0x02 != 0}, nil
}

func decodeRaidBossKill(r *Reader) (domain.Event, error) { return domain.RaidBossKill{}, nil }
func decodeRaidResult(r *Reader) (domain.Event, error)   { return domain.RaidResult{}, nil }
func decodeBossBattleStatus(r *Reader) (domain.Event, error) {
	return domain.BossBattleStatus{}, nil
}
