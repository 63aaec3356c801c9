package schema

// Opcode is the 16-bit identifier at offset 4 of every wire frame (§6
// GLOSSARY). Only opcodes registered in a Registry are decoded; everything
// else is dropped before deobfuscation (§4.2).
type Opcode uint16

const (
	OpInitEnvironment Opcode = 0x2101
	OpInitLocalPlayer Opcode = 0x2102
	OpNewPlayer       Opcode = 0x2110
	OpInitPlayer      Opcode = 0x2111

	OpNewNPC        Opcode = 0x2120
	OpNewProjectile Opcode = 0x2130

	OpSkillDamageNotify             Opcode = 0x3001
	OpSkillDamageAbnormalMoveNotify Opcode = 0x3002

	OpStatusEffectAdd         Opcode = 0x3101
	OpPartyStatusEffectAdd    Opcode = 0x3102
	OpStatusEffectRemove      Opcode = 0x3103
	OpPartyStatusEffectRemove Opcode = 0x3104
	OpPartyStatusEffectResult Opcode = 0x3105

	OpPartyInfo        Opcode = 0x3201
	OpMigrationExecute Opcode = 0x3202

	OpTriggerStartNotify Opcode = 0x3301
	OpRaidBossKill        Opcode = 0x3302
	OpRaidResult          Opcode = 0x3303
	OpBossBattleStatus    Opcode = 0x3304
)
