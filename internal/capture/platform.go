package capture

import "net/netip"

// Endpoint is one established TCP connection reported by the OS process
// table, filtered to the target process and the game server's remote port
// (§4.1 "Connection shadowing").
type Endpoint struct {
	Local  netip.AddrPort
	Remote netip.AddrPort
	PID    uint32
}

// RawSocket is one promiscuous-receive raw IPv4 socket shadowing a single
// TCP connection. Implementations never transmit — the meter is a passive
// observer (§1 Non-goals).
type RawSocket interface {
	// ReadPacket blocks for the next IPv4 datagram observed on the bound
	// interface and returns the number of bytes written into buf.
	ReadPacket(buf []byte) (int, error)
	Close() error
}

// Platform is the OS collaborator the Connection Tracker depends on:
// locating the target process, enumerating its TCP connections, and
// opening shadow sockets for each (§6 "OS / platform").
type Platform interface {
	// FindTargetWindow enumerates top-level windows matching className and
	// returns the owning PID of the first match.
	FindTargetWindow(className string) (pid uint32, err error)

	// TCPTable returns every established IPv4 TCP connection visible to the
	// OS. The tracker filters this down to the target process and remote port.
	TCPTable() ([]Endpoint, error)

	// LocalInterfaceAddrs returns the local IPv4 addresses the raw sockets
	// may bind to.
	LocalInterfaceAddrs() ([]netip.Addr, error)

	// OpenShadow opens a promiscuous-receive raw IPv4 socket bound to local
	// and connected (in the raw-socket sense) to remote.
	OpenShadow(local netip.Addr, remote netip.AddrPort) (RawSocket, error)
}
