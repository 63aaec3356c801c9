package domain

// defaultClassifier is the built-in BuffClassifier, populated with the
// fixed status-effect ID sets named in §4.3. internal/resources may load an
// equivalent set from YAML and pass it to NewMachine instead.
type defaultClassifier struct{}

var (
	apBuffIDs = map[StatusEffectID]bool{
		211601: true, 211749: true, // bard
		361708: true, 362000: true, // paladin
		314004: true, 314181: true, // artist
	}

	identityBuffIDs = map[StatusEffectID]bool{
		211400: true, 211410: true, 211420: true, 500153: true, 310501: true,
	}

	brandIDs = map[StatusEffectID]bool{
		210230: true, 212610: true, 212906: true, 360506: true,
		360804: true, 361004: true, 361505: true, 314260: true,
	}

	maxBrandID = StatusEffectID(361505)
)

func (defaultClassifier) IsAPBuff(id StatusEffectID) bool       { return apBuffIDs[id] }
func (defaultClassifier) IsIdentityBuff(id StatusEffectID) bool { return identityBuffIDs[id] }
func (defaultClassifier) IsBrand(id StatusEffectID) bool        { return brandIDs[id] }
func (defaultClassifier) MaxBrandID() StatusEffectID            { return maxBrandID }

// DefaultBuffClassifier returns the classifier built from the literal ID
// sets in the spec, for callers that do not load a resource override.
func DefaultBuffClassifier() BuffClassifier { return defaultClassifier{} }
