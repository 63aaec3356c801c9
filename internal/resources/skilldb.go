package resources

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/golang/snappy"

	"github.com/wardmeter/meter/internal/domain"
)

// skillRecord is one entry of the on-disk skill database: a snappy-framed
// compact binary serialization of u32 skill ID → {name, class_id?, icon?}
// (§6 "Files on disk").
type skillRecord struct {
	name    string
	classID int32 // -1 means absent
	icon    string
}

// SkillDB implements domain.SkillLookup from the loaded skill database.
type SkillDB struct {
	byID map[domain.SkillID]skillRecord
}

var _ domain.SkillLookup = (*SkillDB)(nil)

// Len reports the number of skill records loaded, for startup reporting.
func (s *SkillDB) Len() int { return len(s.byID) }

func (s *SkillDB) ClassForSkill(id domain.SkillID) (int32, bool) {
	rec, ok := s.byID[id]
	if !ok || rec.classID < 0 {
		return 0, false
	}
	return rec.classID, true
}

func (s *SkillDB) NameForSkill(id domain.SkillID) (string, bool) {
	rec, ok := s.byID[id]
	if !ok || rec.name == "" {
		return "", false
	}
	return rec.name, true
}

// LoadSkillDB reads the snappy-framed skill database and decodes its
// records into a SkillDB. Record layout, per entry:
//
//	u32 skill_id
//	u16 name_len, name bytes (UTF-8)
//	u8  has_class (0/1), u16 class_id (present only if has_class)
//	u16 icon_len, icon bytes (UTF-8, may be zero-length)
func LoadSkillDB(path string) (*SkillDB, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resources: read skill db %s: %w", path, err)
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("resources: snappy decode skill db %s: %w", path, err)
	}

	db := &SkillDB{byID: make(map[domain.SkillID]skillRecord)}

	off := 0
	for off < len(decoded) {
		if off+4 > len(decoded) {
			return nil, fmt.Errorf("resources: skill db truncated reading skill id at offset %d", off)
		}
		id := binary.LittleEndian.Uint32(decoded[off:])
		off += 4

		name, next, err := readSkillString(decoded, off)
		if err != nil {
			return nil, fmt.Errorf("resources: skill db: %w", err)
		}
		off = next

		if off+1 > len(decoded) {
			return nil, fmt.Errorf("resources: skill db truncated reading class flag at offset %d", off)
		}
		hasClass := decoded[off] != 0
		off++
		classID := int32(-1)
		if hasClass {
			if off+2 > len(decoded) {
				return nil, fmt.Errorf("resources: skill db truncated reading class id at offset %d", off)
			}
			classID = int32(binary.LittleEndian.Uint16(decoded[off:]))
			off += 2
		}

		icon, next, err := readSkillString(decoded, off)
		if err != nil {
			return nil, fmt.Errorf("resources: skill db: %w", err)
		}
		off = next

		db.byID[domain.SkillID(id)] = skillRecord{name: name, classID: classID, icon: icon}
	}

	return db, nil
}

func readSkillString(buf []byte, off int) (string, int, error) {
	if off+2 > len(buf) {
		return "", 0, fmt.Errorf("truncated reading string length at offset %d", off)
	}
	n := int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	if off+n > len(buf) {
		return "", 0, fmt.Errorf("truncated reading %d-byte string at offset %d", n, off)
	}
	return string(buf[off : off+n]), off + n, nil
}
