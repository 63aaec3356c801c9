package resources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wardmeter/meter/internal/domain"
)

// YAMLClassifier implements domain.BuffClassifier from YAML-configured
// status-effect ID sets, overriding the built-in defaults in
// domain.DefaultBuffClassifier. Loaded the same way the teacher loads
// armor_set_list.yaml.
type YAMLClassifier struct {
	apBuffs      map[domain.StatusEffectID]bool
	identityBuffs map[domain.StatusEffectID]bool
	brands       map[domain.StatusEffectID]bool
	maxBrandID   domain.StatusEffectID
}

var _ domain.BuffClassifier = (*YAMLClassifier)(nil)

func (c *YAMLClassifier) IsAPBuff(id domain.StatusEffectID) bool       { return c.apBuffs[id] }
func (c *YAMLClassifier) IsIdentityBuff(id domain.StatusEffectID) bool { return c.identityBuffs[id] }
func (c *YAMLClassifier) IsBrand(id domain.StatusEffectID) bool        { return c.brands[id] }
func (c *YAMLClassifier) MaxBrandID() domain.StatusEffectID            { return c.maxBrandID }

type classifierFile struct {
	APBuffIDs      []int32 `yaml:"ap_buff_ids"`
	IdentityBuffIDs []int32 `yaml:"identity_buff_ids"`
	BrandIDs       []int32 `yaml:"brand_ids"`
}

// LoadBuffClassifier reads the AP-buff/identity-buff/brand status-effect ID
// sets from YAML. Any set left empty in the file falls back to the
// corresponding built-in default so a partial override file still yields a
// complete classifier.
func LoadBuffClassifier(path string) (domain.BuffClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resources: read buff classifier %s: %w", path, err)
	}

	var f classifierFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("resources: parse buff classifier %s: %w", path, err)
	}

	def := domain.DefaultBuffClassifier()
	c := &YAMLClassifier{
		apBuffs:       toIDSet(f.APBuffIDs),
		identityBuffs: toIDSet(f.IdentityBuffIDs),
		brands:        toIDSet(f.BrandIDs),
	}
	if len(c.apBuffs) == 0 {
		c.apBuffs = nil
	}
	if len(c.identityBuffs) == 0 {
		c.identityBuffs = nil
	}

	if len(f.BrandIDs) == 0 {
		c.brands = nil
		c.maxBrandID = def.MaxBrandID()
		return &fallbackClassifier{override: c, fallback: def}, nil
	}

	c.maxBrandID = maxID(f.BrandIDs)
	return &fallbackClassifier{override: c, fallback: def}, nil
}

func toIDSet(ids []int32) map[domain.StatusEffectID]bool {
	set := make(map[domain.StatusEffectID]bool, len(ids))
	for _, id := range ids {
		set[domain.StatusEffectID(id)] = true
	}
	return set
}

func maxID(ids []int32) domain.StatusEffectID {
	var max int32
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return domain.StatusEffectID(max)
}

// fallbackClassifier defers to the built-in defaults for any set the YAML
// file left empty, so partial override files don't silently disable
// classification the file's author didn't mean to touch.
type fallbackClassifier struct {
	override *YAMLClassifier
	fallback domain.BuffClassifier
}

func (c *fallbackClassifier) IsAPBuff(id domain.StatusEffectID) bool {
	if c.override.apBuffs == nil {
		return c.fallback.IsAPBuff(id)
	}
	return c.override.apBuffs[id]
}

func (c *fallbackClassifier) IsIdentityBuff(id domain.StatusEffectID) bool {
	if c.override.identityBuffs == nil {
		return c.fallback.IsIdentityBuff(id)
	}
	return c.override.identityBuffs[id]
}

func (c *fallbackClassifier) IsBrand(id domain.StatusEffectID) bool {
	if c.override.brands == nil {
		return c.fallback.IsBrand(id)
	}
	return c.override.brands[id]
}

func (c *fallbackClassifier) MaxBrandID() domain.StatusEffectID {
	return c.override.maxBrandID
}
