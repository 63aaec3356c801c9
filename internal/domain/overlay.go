package domain

import "sort"

// PlayerBreakdown is one row of the per-Encounter player listing, ordered by
// total damage descending.
type PlayerBreakdown struct {
	Object         ObjectID
	Name           string
	Class          int32
	GearLevel      float32
	TotalDamage    int64
	DPS            float64
	BrandPercent   float64
	APPercent      float64
	IdentityPercent float64
}

// SkillBreakdown is one row of the per-(Encounter,player) skill listing,
// ordered by total damage descending.
type SkillBreakdown struct {
	SkillID         SkillID
	Name            string
	HitCount        int64
	TotalDamage     int64
	CritPercent     float64
	BackPercent     float64
	FrontPercent    float64
	BrandPercent    float64
	APPercent       float64
	IdentityPercent float64
}

// QualifyingEncounters returns the indices of Encounters with at least one
// damage event and at least one player (§6).
func (d *Data) QualifyingEncounters() []int {
	var out []int
	for i, enc := range d.Encounters {
		if enc.HasQualifyingActivity() {
			out = append(out, i)
		}
	}
	return out
}

// PlayerBreakdowns enumerates players of the given Encounter ordered by
// total damage descending, with DPS and subtotal percentages (§6).
func PlayerBreakdowns(env *Environment, enc *Encounter) []PlayerBreakdown {
	if enc == nil {
		return nil
	}
	duration := enc.DurationSeconds()

	out := make([]PlayerBreakdown, 0, len(enc.Players))
	for obj, pd := range enc.Players {
		row := PlayerBreakdown{
			Object:      obj,
			TotalDamage: pd.TotalDamage,
			DPS:         float64(pd.TotalDamage) / duration,
		}
		if env != nil {
			if p, ok := env.Players[obj]; ok {
				row.Name = p.Name
				row.Class = p.Class
				row.GearLevel = p.GearLevel
			}
		}
		if pd.TotalDamage > 0 {
			row.BrandPercent = percent(pd.BrandedDamage, pd.TotalDamage)
			row.APPercent = percent(pd.APDamage, pd.TotalDamage)
			row.IdentityPercent = percent(pd.IdentityDamage, pd.TotalDamage)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalDamage > out[j].TotalDamage })
	return out
}

// SkillBreakdowns enumerates one player's skills within an Encounter ordered
// by total damage descending, with hit-count percentages (§6).
func SkillBreakdowns(enc *Encounter, player ObjectID) []SkillBreakdown {
	if enc == nil {
		return nil
	}
	pd, ok := enc.Players[player]
	if !ok {
		return nil
	}

	out := make([]SkillBreakdown, 0, len(pd.Skills))
	for id, su := range pd.Skills {
		row := SkillBreakdown{
			SkillID:     id,
			HitCount:    su.HitCount,
			TotalDamage: su.TotalDamage,
		}
		if su.Name != nil {
			row.Name = *su.Name
		}
		if su.HitCount > 0 {
			row.CritPercent = percent(su.CritCount, su.HitCount)
			row.BackPercent = percent(su.BackAttackCount, su.HitCount)
			row.FrontPercent = percent(su.FrontAttackCount, su.HitCount)
			row.BrandPercent = percent(su.BrandHits, su.HitCount)
			row.APPercent = percent(su.APHits, su.HitCount)
			row.IdentityPercent = percent(su.IdentityHits, su.HitCount)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalDamage > out[j].TotalDamage })
	return out
}

// TrackedBossInfo returns the live HP state of the most recently updated
// tracked boss, or nil if none is tracked.
func TrackedBossInfo(live *LiveData) *BossInfo {
	if live.RecentlyTracked == nil {
		return nil
	}
	info, ok := live.Tracked[*live.RecentlyTracked]
	if !ok {
		return nil
	}
	return info
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
