//go:build !windows

package capture

import (
	"fmt"
	"net/netip"
)

// stubPlatform backs non-Windows builds. The target game client only runs
// under Windows (§6 "OS / platform"); this exists so the rest of the module
// compiles and unit-tests cleanly on any host.
type stubPlatform struct{}

func NewPlatform() Platform { return stubPlatform{} }

func (stubPlatform) FindTargetWindow(string) (uint32, error) {
	return 0, fmt.Errorf("capture: window enumeration is only supported on windows")
}

func (stubPlatform) TCPTable() ([]Endpoint, error) {
	return nil, fmt.Errorf("capture: TCP table enumeration is only supported on windows")
}

func (stubPlatform) LocalInterfaceAddrs() ([]netip.Addr, error) {
	return nil, fmt.Errorf("capture: interface enumeration is only supported on windows")
}

func (stubPlatform) OpenShadow(netip.Addr, netip.AddrPort) (RawSocket, error) {
	return nil, fmt.Errorf("capture: raw socket capture is only supported on windows")
}
