package capture

import (
	"go.uber.org/zap"

	"github.com/wardmeter/meter/internal/domain"
	"github.com/wardmeter/meter/internal/schema"
)

const (
	protocolTCP = 6
	readBufSize = 65536
)

// Pipeline wires one shadow connection's raw-socket reads through header
// parsing, frame reassembly, deobfuscation, decompression, and schema
// decoding, applying the resulting events to the domain machine. One
// instance runs per shadow socket, in its own goroutine — grounded on the
// teacher's per-session readLoop goroutine (internal/net/session.go).
type Pipeline struct {
	xor        *XORTable
	decomp     *Decompressor
	reg        *schema.Registry
	arenaSize  int
	machine    *domain.Machine
	log        *zap.Logger
}

func NewPipeline(xor *XORTable, decomp *Decompressor, reg *schema.Registry, arenaSize int, machine *domain.Machine, log *zap.Logger) *Pipeline {
	return &Pipeline{xor: xor, decomp: decomp, reg: reg, arenaSize: arenaSize, machine: machine, log: log}
}

// Run reads IPv4 datagrams from conn's socket until it errors or is closed,
// feeding each TCP segment's payload through the frame reassembler. Intended
// to run in its own goroutine per shadow connection — each connection gets
// its own scratch arena, since frames from different connections must
// never share one bump allocator's cursor.
func (p *Pipeline) Run(conn *shadowConn) {
	buf := make([]byte, readBufSize)
	log := p.log.With(zap.Stringer("remote", conn.remote))
	arena := schema.NewArena(p.arenaSize)

	for {
		n, err := conn.sock.ReadPacket(buf)
		if err != nil {
			log.Debug("shadow socket read ended", zap.Error(err))
			return
		}

		payload, ok := tcpPayload(buf[:n])
		if !ok {
			continue
		}

		conn.reasm.Feed(payload, func(opcode uint16, compression byte, framePayload []byte) {
			p.handleFrame(log, arena, opcode, compression, framePayload)
		})
	}
}

func (p *Pipeline) handleFrame(log *zap.Logger, arena *schema.Arena, opcode uint16, compression byte, framePayload []byte) {
	op := schema.Opcode(opcode)
	if !p.reg.Known(op) {
		return
	}

	deobfuscated := append([]byte(nil), framePayload...)
	p.xor.Deobfuscate(opcode, deobfuscated)

	message, err := p.decomp.Decompress(compression, deobfuscated)
	if err != nil {
		log.Debug("dropping frame: decompression failed", zap.Uint16("opcode", opcode), zap.Error(err))
		return
	}

	mark := arena.Mark()
	defer arena.Reset(mark)

	ev, err := p.reg.Decode(op, message, arena)
	if err != nil {
		log.Debug("dropping frame: decode failed", zap.Uint16("opcode", opcode), zap.Error(err))
		return
	}
	if ev == nil {
		return
	}
	p.machine.Apply(ev)
}

// tcpPayload parses an IPv4 datagram's header (using IHL) and the following
// TCP header (using the data offset) and returns the TCP payload, or false
// if the datagram is not IPv4/TCP or is too short to contain both headers
// (§4.1 "I/O loop" step 1).
func tcpPayload(datagram []byte) ([]byte, bool) {
	if len(datagram) < 20 {
		return nil, false
	}
	version := datagram[0] >> 4
	if version != 4 {
		return nil, false
	}
	ihl := int(datagram[0]&0x0F) * 4
	if ihl < 20 || len(datagram) < ihl+20 {
		return nil, false
	}
	protocol := datagram[9]
	if protocol != protocolTCP {
		return nil, false
	}

	tcpHeader := datagram[ihl:]
	dataOffset := int(tcpHeader[12]>>4) * 4
	if dataOffset < 20 || len(tcpHeader) < dataOffset {
		return nil, false
	}

	return tcpHeader[dataOffset:], true
}
