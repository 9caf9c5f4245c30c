package netmon

import (
	"bytes"
	"net"
	"sort"
)

// Addr is one address of one interface as reported by an Enumerator,
// including loopback entries. Index is 0 when the platform did not
// report one.
type Addr struct {
	Name     string
	IP       net.IP
	Index    int
	Loopback bool
}

// Enumerator lists the current interface addresses of the host. It must
// report all interfaces, including loopback; filtering happens in
// CollectSnapshot. Implementations are called at least once per poll
// interval and should be cheap.
type Enumerator interface {
	Addrs() ([]Addr, error)
}

// Entry is one interface address in a snapshot.
type Entry struct {
	Name  string `json:"name"`
	IP    net.IP `json:"ip"`
	Index int    `json:"index,omitempty"`
}

// Snapshot is a sorted, deduplicated point-in-time view of the relevant
// non-loopback interface addresses. Two snapshots taken from the same
// underlying state compare equal regardless of enumeration order.
type Snapshot []Entry

// Equal reports whether both snapshots contain the same entries.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if compareEntries(s[i], other[i]) != 0 {
			return false
		}
	}
	return true
}

// IPs returns the sorted, deduplicated addresses present in the snapshot.
func (s Snapshot) IPs() []net.IP {
	ips := make([]net.IP, 0, len(s))
	for _, entry := range s {
		ips = append(ips, entry.IP)
	}
	sort.Slice(ips, func(i, j int) bool {
		return bytes.Compare(ipKey(ips[i]), ipKey(ips[j])) < 0
	})
	deduped := ips[:0]
	for _, ip := range ips {
		if len(deduped) == 0 || !deduped[len(deduped)-1].Equal(ip) {
			deduped = append(deduped, ip)
		}
	}
	return deduped
}

// CollectSnapshot enumerates the host interfaces once and returns the
// sorted snapshot of non-loopback addresses accepted by the filter. An
// enumeration failure is returned as-is; no partial snapshot is built.
func CollectSnapshot(enum Enumerator, filter Filter) (Snapshot, error) {
	addrs, err := enum.Addrs()
	if err != nil {
		return nil, err
	}

	snapshot := make(Snapshot, 0, len(addrs))
	for _, addr := range addrs {
		if addr.Loopback {
			continue
		}
		if !filter.Matches(addr.Name) {
			continue
		}
		snapshot = append(snapshot, Entry{Name: addr.Name, IP: addr.IP, Index: addr.Index})
	}

	sort.Slice(snapshot, func(i, j int) bool {
		return compareEntries(snapshot[i], snapshot[j]) < 0
	})

	deduped := snapshot[:0]
	for _, entry := range snapshot {
		if len(deduped) == 0 || compareEntries(deduped[len(deduped)-1], entry) != 0 {
			deduped = append(deduped, entry)
		}
	}
	return deduped, nil
}

// MissingInterfaces returns the filter members that are absent from the
// current full enumeration. Always empty for an all-interfaces filter.
// The result is advisory; it never changes control flow.
func MissingInterfaces(enum Enumerator, filter Filter) ([]string, error) {
	if filter.IsAll() {
		return nil, nil
	}

	addrs, err := enum.Addrs()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		existing[addr.Name] = struct{}{}
	}

	var missing []string
	for _, name := range filter.Names() {
		if _, ok := existing[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// SelectedIPs returns the addresses the responder should be restricted
// to. For an all-interfaces filter it returns nil, which the advertiser
// interprets as "no restriction", not "no addresses".
func SelectedIPs(filter Filter, snapshot Snapshot) []net.IP {
	if filter.IsAll() {
		return nil
	}
	return snapshot.IPs()
}

func compareEntries(a, b Entry) int {
	if c := bytes.Compare([]byte(a.Name), []byte(b.Name)); c != 0 {
		return c
	}
	if c := bytes.Compare(ipKey(a.IP), ipKey(b.IP)); c != 0 {
		return c
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	}
	return 0
}

// ipKey normalizes an IP to its 16-byte form so IPv4 and IPv6 addresses
// sort under one total order.
func ipKey(ip net.IP) []byte {
	if key := ip.To16(); key != nil {
		return key
	}
	return ip
}
