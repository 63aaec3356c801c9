package resources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wardmeter/meter/internal/domain"
)

// BossList implements domain.BossRegistry from a YAML species-ID list,
// loaded the same way the teacher loads armor_set_list.yaml.
type BossList struct {
	species map[domain.SpeciesID]bool
}

var _ domain.BossRegistry = (*BossList)(nil)

func (b *BossList) IsBossSpecies(id domain.SpeciesID) bool {
	return b.species[id]
}

type bossListFile struct {
	Bosses []int32 `yaml:"boss_species_ids"`
}

// LoadBossList reads the boss species-ID YAML file.
func LoadBossList(path string) (*BossList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resources: read boss list %s: %w", path, err)
	}

	var f bossListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("resources: parse boss list %s: %w", path, err)
	}

	bl := &BossList{species: make(map[domain.SpeciesID]bool, len(f.Bosses))}
	for _, id := range f.Bosses {
		bl.species[domain.SpeciesID(id)] = true
	}
	return bl, nil
}
