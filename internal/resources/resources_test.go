package resources

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"

	"github.com/wardmeter/meter/internal/domain"
)

func TestLoadXORTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xor.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadXORTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	data := []byte{0xFF}
	table.Deobfuscate(0, data)
	if data[0] != 0xFF^1 {
		t.Fatalf("got %x", data[0])
	}
}

func TestLoadXORTableRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xor.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadXORTable(path); err == nil {
		t.Fatalf("expected error for empty xor table")
	}
}

func encodeSkillRecord(id uint32, name string, classID int32, icon string) []byte {
	var buf []byte
	idBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(idBuf, id)
	buf = append(buf, idBuf...)
	buf = append(buf, encodeString(name)...)
	if classID >= 0 {
		buf = append(buf, 1)
		cb := make([]byte, 2)
		binary.LittleEndian.PutUint16(cb, uint16(classID))
		buf = append(buf, cb...)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, encodeString(icon)...)
	return buf
}

func encodeString(s string) []byte {
	lb := make([]byte, 2)
	binary.LittleEndian.PutUint16(lb, uint16(len(s)))
	return append(lb, []byte(s)...)
}

func TestLoadSkillDB(t *testing.T) {
	var raw []byte
	raw = append(raw, encodeSkillRecord(100, "Fireball", 5, "ico_fire")...)
	raw = append(raw, encodeSkillRecord(200, "Unnamed", -1, "")...)

	path := filepath.Join(t.TempDir(), "skills.bin")
	if err := os.WriteFile(path, snappy.Encode(nil, raw), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := LoadSkillDB(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	name, ok := db.NameForSkill(100)
	if !ok || name != "Fireball" {
		t.Fatalf("name = %q, %v", name, ok)
	}
	class, ok := db.ClassForSkill(100)
	if !ok || class != 5 {
		t.Fatalf("class = %d, %v", class, ok)
	}
	if _, ok := db.ClassForSkill(200); ok {
		t.Fatalf("expected no class for skill 200")
	}
	if _, ok := db.NameForSkill(999); ok {
		t.Fatalf("expected no entry for unknown skill")
	}
}

func TestLoadBossList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bosses.yaml")
	content := "boss_species_ids: [1001, 1002]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	bosses, err := LoadBossList(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bosses.IsBossSpecies(1001) {
		t.Fatalf("expected species 1001 to be a boss")
	}
	if bosses.IsBossSpecies(9) {
		t.Fatalf("did not expect species 9 to be a boss")
	}
}

func TestLoadBuffClassifierPartialOverrideFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classify.yaml")
	content := "ap_buff_ids: [555]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadBuffClassifier(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.IsAPBuff(555) {
		t.Fatalf("expected overridden ap buff 555 to classify")
	}
	def := domain.DefaultBuffClassifier()
	if c.IsBrand(def.MaxBrandID()) != def.IsBrand(def.MaxBrandID()) {
		t.Fatalf("expected brand classification to fall back to defaults when omitted")
	}
}
