package advertise

import (
	"net"
	"strings"
)

const domainSuffix = ".local"

// Handle is an opaque reference to a running responder. The owner must
// release it with Stop; there is no implicit cleanup.
type Handle interface {
	Stop()
}

// Advertiser starts mdns responders for a host name. An empty ips slice
// means the responder binds without an address restriction, not that it
// binds to nothing.
type Advertiser interface {
	Advertise(hostname string, ips []net.IP) (Handle, error)
}

// FQDN appends ".local" to name unless the literal suffix is already
// present.
func FQDN(name string) string {
	if strings.HasSuffix(name, domainSuffix) {
		return name
	}
	return name + domainSuffix
}
