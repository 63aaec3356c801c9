package domain

// applyDamage implements the damage-processing algorithm of §4.3: source
// resolution, per-event hit classification, skill/player aggregation, and
// AP/identity/brand subtotal classification.
func (m *Machine) applyDamage(d *Data, source ObjectID, skill SkillID, events []DamageEvent) {
	env := d.CurrentEnvironment()
	if env == nil || len(events) == 0 {
		return
	}

	effectiveSource := env.ResolveProjectileSource(source, m.maxProjectileChainLen)

	if _, ok := env.Players[effectiveSource]; !ok {
		if m.skills == nil {
			return
		}
		class, ok := m.skills.ClassForSkill(skill)
		if !ok {
			return
		}
		env.Players[effectiveSource] = &Player{Class: class}
	}

	enc := d.CurrentEncounter()
	if enc == nil {
		enc = NewEncounter(d.currentEnvironmentIndex(), m.now())
		d.Encounters = append(d.Encounters, enc)
	}

	source = effectiveSource
	attacker := enc.player(source)

	now := m.now()
	anyTrackedHit := false

	for _, ev := range events {
		flag := HitFlag(ev.Modifier & 0x0F)
		option := HitOption((ev.Modifier >> 4) & 0x07)
		if !flag.Valid() || !option.Valid() {
			continue
		}

		overkill := -ev.CurHP
		if overkill < 0 {
			overkill = 0
		}
		effective := ev.Damage - overkill
		if effective < 0 {
			effective = 0
		}
		if effective == 0 || flag == HitDamageShare {
			continue
		}

		attacker.TotalDamage += effective
		attacker.HitCount++
		attacker.DamageSeries = append(attacker.DamageSeries, DamagePoint{At: now, Damage: effective})
		attacker.Casts = append(attacker.Casts, CastEntry{At: now, SkillID: skill})

		su, ok := attacker.Skills[skill]
		if !ok {
			su = &SkillUsage{}
			if skill == 0 && (flag == HitDot || flag == HitDotCritical) {
				name := "Bleed"
				su.Name = &name
			} else if m.skills != nil {
				if name, ok := m.skills.NameForSkill(skill); ok {
					su.Name = &name
				}
			}
			attacker.Skills[skill] = su
		}
		su.HitCount++
		su.TotalDamage += effective
		if flag == HitCritical || flag == HitDotCritical {
			su.CritCount++
		}
		switch option {
		case OptionBack:
			su.BackAttackCount++
		case OptionFront:
			su.FrontAttackCount++
		}
		su.Hits = append(su.Hits, Hit{At: now, Damage: effective, Flag: flag, Option: option})

		classes := m.classes
		if classes == nil {
			classes = DefaultBuffClassifier()
		}

		if m.hasBuffKind(d.Live, source, classes.IsAPBuff) {
			attacker.APDamage += effective
			attacker.APHits++
			su.APHits++
		}
		if m.hasBuffKind(d.Live, source, classes.IsIdentityBuff) {
			attacker.IdentityDamage += effective
			attacker.IdentityHits++
			su.IdentityHits++
		}

		if m.isBranded(d.Live, ev.Target, source, classes) {
			attacker.BrandedDamage += effective
			attacker.BrandedHits++
			su.BrandHits++
		}

		for _, tb := range enc.Tracked {
			if tb.Object == ev.Target {
				anyTrackedHit = true
				info, ok := d.Live.Tracked[ev.Target]
				if !ok {
					info = &BossInfo{}
					d.Live.Tracked[ev.Target] = info
				}
				info.MaxHP = ev.MaxHP
				info.CurHP = ev.CurHP
				t := ev.Target
				d.Live.RecentlyTracked = &t
				break
			}
		}
	}

	if len(enc.Tracked) == 0 || anyTrackedHit {
		if enc.FirstDamage == nil {
			first := now
			enc.FirstDamage = &first
		}
		last := now
		enc.LastDamage = &last
	}
}

func (m *Machine) hasBuffKind(live *LiveData, target ObjectID, is func(StatusEffectID) bool) bool {
	for id := range live.buffsFor(target) {
		if is(id) {
			return true
		}
	}
	return false
}

// isBranded classifies the target's buff set for an ID in the brand set
// whose applicant is the source or a party member of the source, scanning
// in ID order so the search can stop once IDs exceed MaxBrandID (§4.3 3.f).
func (m *Machine) isBranded(live *LiveData, target, source ObjectID, classes BuffClassifier) bool {
	buffs := live.Buffs[target]
	if len(buffs) == 0 {
		return false
	}
	sourceParty, sourceHasParty := live.Parties[PartyKeyForObject(source)]

	ids := make([]StatusEffectID, 0, len(buffs))
	for id := range buffs {
		ids = append(ids, id)
	}
	sortStatusEffectIDs(ids)

	maxBrand := classes.MaxBrandID()
	for _, id := range ids {
		if id > maxBrand {
			break
		}
		if !classes.IsBrand(id) {
			continue
		}
		applicant := buffs[id].Applicant
		if applicant == source {
			return true
		}
		if sourceHasParty {
			if p, ok := live.Parties[PartyKeyForObject(applicant)]; ok && p == sourceParty {
				return true
			}
		}
	}
	return false
}

func sortStatusEffectIDs(ids []StatusEffectID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
