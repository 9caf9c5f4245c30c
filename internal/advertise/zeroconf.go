package advertise

import (
	"fmt"
	"net"
	"strings"

	"github.com/dmdmdm-nz/zeroconf"
	log "github.com/sirupsen/logrus"
)

const (
	mdnsServiceType = "_workstation._tcp"
	mdnsDomain      = "local."
	mdnsPort        = 9
)

type zeroconfAdvertiser struct{}

// NewZeroconfAdvertiser returns an Advertiser backed by a zeroconf
// responder publishing <hostname> on the local network.
func NewZeroconfAdvertiser() Advertiser {
	return &zeroconfAdvertiser{}
}

func (a *zeroconfAdvertiser) Advertise(hostname string, ips []net.IP) (Handle, error) {
	instance := strings.TrimSuffix(hostname, domainSuffix)

	var server *zeroconf.Server
	var err error
	if len(ips) == 0 {
		// No restriction: let the responder pick up every multicast-capable
		// interface itself.
		server, err = zeroconf.Register(instance, mdnsServiceType, mdnsDomain, mdnsPort, []string{}, nil)
	} else {
		addrs := make([]string, 0, len(ips))
		for _, ip := range ips {
			addrs = append(addrs, ip.String())
		}
		server, err = zeroconf.RegisterProxy(instance, mdnsServiceType, mdnsDomain, mdnsPort, instance, addrs, []string{}, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", hostname, err)
	}

	log.WithFields(log.Fields{
		"hostname":  hostname,
		"addresses": len(ips),
	}).Debug("Registered zeroconf responder")

	return &zeroconfHandle{server: server}, nil
}

type zeroconfHandle struct {
	server *zeroconf.Server
}

func (h *zeroconfHandle) Stop() {
	h.server.Shutdown()
}
