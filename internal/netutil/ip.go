// Package netutil provides local-interface discovery, used by the sACN
// transmitter to pick its bind address. The UDP sensor listener does
// not use it; it binds on all IPv4 interfaces.
package netutil

import (
	"fmt"
	"net"
	"strings"
)

// FindInterfaceIP finds the local interface address that falls inside
// cidr. Returns a nil IP (no error) when no interface matches.
func FindInterfaceIP(cidr string) (net.IP, error) {
	_, cidrNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("netutil: invalid cidr %q: %w", cidr, err)
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("netutil: error getting ips: %w", err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP

		if strings.Contains(ip.String(), ":") {
			continue
		}

		if cidrNet.Contains(ip) {
			return ip, nil
		}
	}

	return nil, nil
}
