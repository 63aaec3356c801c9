package schema

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wardmeter/meter/internal/domain"
)

// DecodeFunc parses one opcode's payload into a domain event.
type DecodeFunc func(*Reader) (domain.Event, error)

// Registry maps opcodes the domain machine cares about to their decoder.
// Opcodes with no entry are dropped silently before deobfuscation (§4.2).
type Registry struct {
	handlers map[Opcode]DecodeFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	reg := &Registry{handlers: make(map[Opcode]DecodeFunc), log: log}
	reg.registerDefaults()
	return reg
}

func (reg *Registry) registerDefaults() {
	reg.Register(OpInitEnvironment, decodeInitEnvironment)
	reg.Register(OpInitLocalPlayer, decodeInitLocalPlayer)
	reg.Register(OpNewPlayer, decodeNewPlayer)
	reg.Register(OpInitPlayer, decodeInitPlayer)
	reg.Register(OpNewNPC, decodeNewNPC)
	reg.Register(OpNewProjectile, decodeNewProjectile)
	reg.Register(OpSkillDamageNotify, decodeSkillDamageNotify)
	reg.Register(OpSkillDamageAbnormalMoveNotify, decodeSkillDamageAbnormalMoveNotify)
	reg.Register(OpStatusEffectAdd, decodeStatusEffectAdd)
	reg.Register(OpPartyStatusEffectAdd, decodePartyStatusEffectAdd)
	reg.Register(OpStatusEffectRemove, decodeStatusEffectRemove)
	reg.Register(OpPartyStatusEffectRemove, decodePartyStatusEffectRemove)
	reg.Register(OpPartyStatusEffectResult, decodePartyStatusEffectResult)
	reg.Register(OpPartyInfo, decodePartyInfo)
	reg.Register(OpMigrationExecute, decodeMigrationExecute)
	reg.Register(OpTriggerStartNotify, decodeTriggerStartNotify)
	reg.Register(OpRaidBossKill, decodeRaidBossKill)
	reg.Register(OpRaidResult, decodeRaidResult)
	reg.Register(OpBossBattleStatus, decodeBossBattleStatus)
}

func (reg *Registry) Register(op Opcode, fn DecodeFunc) {
	reg.handlers[op] = fn
}

// Known reports whether op has a registered decoder, letting the capture
// pipeline drop unknown-opcode frames before spending work on deobfuscation.
func (reg *Registry) Known(op Opcode) bool {
	_, ok := reg.handlers[op]
	return ok
}

// Decode looks up op's decoder and runs it against payload, with panic
// recovery so one malformed frame can never crash the capture loop (§7).
func (reg *Registry) Decode(op Opcode, payload []byte, arena *Arena) (ev domain.Event, err error) {
	fn, ok := reg.handlers[op]
	if !ok {
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("decoder panic recovered",
				zap.Uint16("opcode", uint16(op)),
				zap.Any("panic", rec),
			)
			ev, err = nil, fmt.Errorf("schema: decoder panic for opcode %#x: %v", op, rec)
		}
	}()

	r := NewReader(payload, arena)
	decoded, derr := fn(r)
	if derr != nil {
		return nil, fmt.Errorf("schema: decode opcode %#x: %w", op, derr)
	}
	return decoded, nil
}
