package capture

import (
	"testing"

	"go.uber.org/zap"

	"github.com/wardmeter/meter/internal/schema"
)

func TestTCPPayloadExtractsApplicationBytes(t *testing.T) {
	payload := []byte("hello")
	datagram := buildIPv4TCPDatagram(payload)

	got, ok := tcpPayload(datagram)
	if !ok {
		t.Fatalf("expected datagram to parse")
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestTCPPayloadRejectsNonTCP(t *testing.T) {
	datagram := buildIPv4TCPDatagram([]byte("x"))
	datagram[9] = 17 // UDP
	if _, ok := tcpPayload(datagram); ok {
		t.Fatalf("expected non-TCP datagram to be rejected")
	}
}

func TestTCPPayloadRejectsShortDatagram(t *testing.T) {
	if _, ok := tcpPayload([]byte{1, 2, 3}); ok {
		t.Fatalf("expected short datagram to be rejected")
	}
}

func buildIPv4TCPDatagram(payload []byte) []byte {
	ipHeaderLen := 20
	tcpHeaderLen := 20
	d := make([]byte, ipHeaderLen+tcpHeaderLen+len(payload))
	d[0] = 0x45 // version 4, IHL 5 (20 bytes)
	d[9] = protocolTCP
	d[ipHeaderLen+12] = 5 << 4 // data offset 5 (20 bytes), no options
	copy(d[ipHeaderLen+tcpHeaderLen:], payload)
	return d
}

func TestHandleFrameDropsUnknownOpcode(t *testing.T) {
	reg := schema.NewRegistry(zap.NewNop())
	p := NewPipeline(NewXORTable([]byte{1}), NewDecompressor(nil), reg, 4096, nil, zap.NewNop())

	arena := schema.NewArena(64)
	// opcode 0xFFFF is never registered by schema.registerDefaults, and a
	// nil machine would panic if handleFrame reached Apply, so reaching
	// the end of this call without panicking proves the frame was dropped.
	p.handleFrame(zap.NewNop(), arena, 0xFFFF, 0, []byte("payload"))
}
