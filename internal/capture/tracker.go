package capture

import (
	"fmt"
	"net/netip"
	"time"

	"go.uber.org/zap"
)

// refreshInterval is how often the tracker re-polls the OS TCP table for
// the target process's connections (§4.1 "Connection shadowing").
const refreshInterval = 250 * time.Millisecond

// remoteGamePort is the fixed server port the target process talks to.
const remoteGamePort = 6040

// Tracker owns the target process's shadow socket set and keeps it in sync
// with the OS-reported connection table. New and dead shadow sockets are
// reported through channels to the capture loop, mirroring the teacher's
// accept-loop new/dead session channel pattern (internal/capture/tracker.go
// is grounded on the teacher's internal/net/server.go).
type Tracker struct {
	plat Platform
	pid  uint32
	log  *zap.Logger

	active map[netip.AddrPort]*shadowConn

	newConns chan *shadowConn
	deadConn chan netip.AddrPort
	stopCh   chan struct{}
}

type shadowConn struct {
	remote netip.AddrPort
	sock   RawSocket
	reasm  *Reassembler
}

func NewTracker(plat Platform, pid uint32, log *zap.Logger) *Tracker {
	return &Tracker{
		plat:     plat,
		pid:      pid,
		log:      log.With(zap.Uint32("pid", pid)),
		active:   make(map[netip.AddrPort]*shadowConn),
		newConns: make(chan *shadowConn, 16),
		deadConn: make(chan netip.AddrPort, 16),
		stopCh:   make(chan struct{}),
	}
}

// NewShadowConns returns the channel of newly opened shadow connections.
func (t *Tracker) NewShadowConns() <-chan *shadowConn { return t.newConns }

// DeadShadowConns returns the channel of remote endpoints whose shadow
// socket was torn down because the OS no longer reports the connection.
func (t *Tracker) DeadShadowConns() <-chan netip.AddrPort { return t.deadConn }

// Stop halts the refresh loop and closes every open shadow socket.
func (t *Tracker) Stop() {
	close(t.stopCh)
	for _, c := range t.active {
		c.sock.Close()
	}
}

// Run polls the OS connection table every refreshInterval until Stop is
// called. Intended to run in its own goroutine.
func (t *Tracker) Run() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			if err := t.refresh(); err != nil {
				t.log.Error("connection table refresh failed", zap.Error(err))
			}
		}
	}
}

func (t *Tracker) refresh() error {
	table, err := t.plat.TCPTable()
	if err != nil {
		return fmt.Errorf("capture: tcp table: %w", err)
	}

	locals, err := t.plat.LocalInterfaceAddrs()
	if err != nil {
		return fmt.Errorf("capture: local interfaces: %w", err)
	}
	localSet := make(map[netip.Addr]bool, len(locals))
	for _, a := range locals {
		localSet[a] = true
	}

	seen := make(map[netip.AddrPort]Endpoint)
	for _, ep := range table {
		if ep.PID != t.pid || ep.Remote.Port() != remoteGamePort {
			continue
		}
		if !localSet[ep.Local.Addr()] {
			continue
		}
		seen[ep.Remote] = ep
	}

	for remote, conn := range t.active {
		if _, ok := seen[remote]; !ok {
			conn.sock.Close()
			delete(t.active, remote)
			select {
			case t.deadConn <- remote:
			default:
			}
		}
	}

	for remote, ep := range seen {
		if _, ok := t.active[remote]; ok {
			continue
		}
		sock, err := t.plat.OpenShadow(ep.Local.Addr(), ep.Remote)
		if err != nil {
			t.log.Warn("failed to open shadow socket", zap.Stringer("remote", remote), zap.Error(err))
			continue
		}
		conn := &shadowConn{remote: remote, sock: sock, reasm: NewReassembler()}
		t.active[remote] = conn
		select {
		case t.newConns <- conn:
		default:
			t.log.Warn("new-connection queue full, dropping shadow socket", zap.Stringer("remote", remote))
			sock.Close()
			delete(t.active, remote)
		}
	}

	return nil
}
