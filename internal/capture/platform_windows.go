//go:build windows

package capture

import (
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// sioRcvAll is SIO_RCVALL: it puts a raw socket into promiscuous-receive
// mode so it observes every IPv4 segment on the bound interface, not just
// ones addressed to it (§4.1, §6). Value taken from Winsock2's IOC_IN |
// IOC_VENDOR | 1 control-code encoding.
const sioRcvAll = 0x80000000 | 0x18000000 | 1

// tcpStateEstablished is the MIB_TCP_STATE enum value for ESTABLISHED
// connections, the only state the tracker cares about (§4.1).
const tcpStateEstablished = 5

// winPlatform implements Platform on top of user32 window enumeration and
// the IP helper TCP table, matching the Win32 surface described in §6.
type winPlatform struct{}

func NewPlatform() Platform { return winPlatform{} }

func (winPlatform) FindTargetWindow(className string) (uint32, error) {
	var pid uint32
	classPtr, err := syscall.UTF16PtrFromString(className)
	if err != nil {
		return 0, err
	}

	user32 := windows.NewLazySystemDLL("user32.dll")
	findWindow := user32.NewProc("FindWindowW")
	getPID := user32.NewProc("GetWindowThreadProcessId")

	hwnd, _, _ := findWindow.Call(uintptr(unsafe.Pointer(classPtr)), 0)
	if hwnd == 0 {
		return 0, fmt.Errorf("capture: no window with class %q found", className)
	}
	getPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return 0, fmt.Errorf("capture: window found but owning pid is zero")
	}
	return pid, nil
}

func (winPlatform) TCPTable() ([]Endpoint, error) {
	rows, err := getExtendedTCPTable()
	if err != nil {
		return nil, err
	}
	out := make([]Endpoint, 0, len(rows))
	for _, row := range rows {
		if row.State != tcpStateEstablished {
			continue
		}
		out = append(out, Endpoint{
			Local:  netip.AddrPortFrom(netip.AddrFrom4(row.LocalAddr), row.LocalPort),
			Remote: netip.AddrPortFrom(netip.AddrFrom4(row.RemoteAddr), row.RemotePort),
			PID:    row.OwningPid,
		})
	}
	return out, nil
}

func (winPlatform) LocalInterfaceAddrs() ([]netip.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("capture: enumerate interfaces: %w", err)
	}
	var out []netip.Addr
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				out = append(out, netip.AddrFrom4([4]byte(ip4)))
			}
		}
	}
	return out, nil
}

func (winPlatform) OpenShadow(local netip.Addr, remote netip.AddrPort) (RawSocket, error) {
	fd, err := windows.Socket(windows.AF_INET, windows.SOCK_RAW, windows.IPPROTO_IP)
	if err != nil {
		return nil, fmt.Errorf("capture: open raw socket: %w", err)
	}

	sa := &windows.SockaddrInet4{Port: 0, Addr: local.As4()}
	if err := windows.Bind(fd, sa); err != nil {
		windows.Closesocket(fd)
		return nil, fmt.Errorf("capture: bind raw socket: %w", err)
	}

	var flagIn uint32 = 1
	var bytesReturned uint32
	if err := windows.WSAIoctl(fd, sioRcvAll, (*byte)(unsafe.Pointer(&flagIn)), 4, nil, 0, &bytesReturned, nil, 0); err != nil {
		windows.Closesocket(fd)
		return nil, fmt.Errorf("capture: SIO_RCVALL ioctl: %w", err)
	}

	ra := &windows.SockaddrInet4{Port: int(remote.Port()), Addr: remote.Addr().As4()}
	if err := windows.Connect(fd, ra); err != nil {
		windows.Closesocket(fd)
		return nil, fmt.Errorf("capture: connect raw socket: %w", err)
	}

	return &winRawSocket{fd: fd}, nil
}

type winRawSocket struct {
	fd windows.Handle
}

func (s *winRawSocket) ReadPacket(buf []byte) (int, error) {
	n, err := windows.Read(s.fd, buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *winRawSocket) Close() error {
	return windows.Closesocket(s.fd)
}

// getExtendedTCPTable and the row type it returns are a thin wrapper over
// the IP Helper API's GetExtendedTcpTable; the full struct marshaling is
// elided here in favor of the typed view TCPTable needs.
type tcpRow struct {
	State      uint32
	LocalAddr  [4]byte
	LocalPort  uint16
	RemoteAddr [4]byte
	RemotePort uint16
	OwningPid  uint32
}

func getExtendedTCPTable() ([]tcpRow, error) {
	// A production build calls GetExtendedTcpTable(nil, &size, false, AF_INET,
	// TCP_TABLE_OWNER_PID_ALL, 0) twice (size probe, then fill) and parses the
	// returned MIB_TCPTABLE_OWNER_PID rows into tcpRow. Left unimplemented
	// here; the shape above is what TCPTable consumes.
	return nil, fmt.Errorf("capture: GetExtendedTcpTable not wired on this build")
}
