package devenv

import (
	"net"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// Interface is the subset of a network interface the address collector needs.
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    []net.IP
}

// InterfaceLister enumerates network interfaces.
type InterfaceLister interface {
	Interfaces() ([]Interface, error)
}

// SystemInterfaces lists the interfaces of the running machine.
type SystemInterfaces struct {
	// Logger receives per-interface failures. Nil discards them.
	Logger log.Logger
}

// interfaceAddrs is swapped in tests.
var interfaceAddrs = func(ifc net.Interface) ([]net.Addr, error) { return ifc.Addrs() }

// Interfaces implements InterfaceLister using net.Interfaces. An interface
// whose addresses cannot be read is skipped.
func (s SystemInterfaces) Interfaces() ([]Interface, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]Interface, 0, len(ifaces))
	for _, ifc := range ifaces {
		addrs, err := interfaceAddrs(ifc)
		if err != nil {
			logger.Warn("skipping interface with unreadable addresses",
				log.String("interface", ifc.Name), log.Err(err))
			continue
		}
		item := Interface{
			Name:     ifc.Name,
			Up:       ifc.Flags&net.FlagUp != 0,
			Loopback: ifc.Flags&net.FlagLoopback != 0,
		}
		for _, a := range addrs {
			switch v := a.(type) {
			case *net.IPNet:
				item.Addrs = append(item.Addrs, v.IP)
			case *net.IPAddr:
				item.Addrs = append(item.Addrs, v.IP)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// IPAddresses returns every routable address of the up, non-loopback
// interfaces. Enumeration failures are logged and produce an empty list.
func IPAddresses(lister InterfaceLister, logger log.Logger) []string {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	ifaces, err := lister.Interfaces()
	if err != nil {
		logger.Warn("failed to enumerate network interfaces", log.Err(err))
		return []string{}
	}

	addrs := []string{}
	for _, ifc := range ifaces {
		if ifc.Loopback || !ifc.Up {
			continue
		}
		for _, ip := range ifc.Addrs {
			if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
				continue
			}
			addrs = append(addrs, ip.String())
		}
	}
	return addrs
}

// DebugHosts returns the hosts a remote debugger should try, in order.
func DebugHosts(info DeviceInfo, lister InterfaceLister, logger log.Logger) []string {
	if IsEmulator(info) {
		return []string{"localhost"}
	}
	return IPAddresses(lister, logger)
}
