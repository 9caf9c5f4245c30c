package netmon

import (
	"fmt"
	"net"
)

// SystemEnumerator lists interface addresses via the standard library.
type SystemEnumerator struct{}

func (SystemEnumerator) Addrs() ([]Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	var out []Addr
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("addresses of %s: %w", iface.Name, err)
		}

		loopback := iface.Flags&net.FlagLoopback != 0
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			out = append(out, Addr{
				Name:     iface.Name,
				IP:       ipNet.IP,
				Index:    iface.Index,
				Loopback: loopback || ipNet.IP.IsLoopback(),
			})
		}
	}
	return out, nil
}
