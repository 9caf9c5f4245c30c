package netmon

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnumerator is a test double for the Enumerator interface
type fakeEnumerator struct {
	mu    sync.Mutex
	addrs []Addr
	err   error
}

func (f *fakeEnumerator) Addrs() ([]Addr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]Addr(nil), f.addrs...), nil
}

func (f *fakeEnumerator) set(addrs []Addr, err error) {
	f.mu.Lock()
	f.addrs = addrs
	f.err = err
	f.mu.Unlock()
}

func ip(s string) net.IP {
	parsed := net.ParseIP(s)
	if parsed == nil {
		panic("bad test IP: " + s)
	}
	return parsed
}

func TestCollectSnapshot_ExcludesLoopback(t *testing.T) {
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
		{Name: "lo", IP: ip("127.0.0.1"), Index: 1, Loopback: true},
	}}

	snapshot, err := CollectSnapshot(enum, Filter{})
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "eth0", snapshot[0].Name)
	assert.True(t, snapshot[0].IP.Equal(ip("10.0.0.5")))
	assert.Equal(t, 2, snapshot[0].Index)

	// Filter all: no address restriction for the responder
	assert.Empty(t, SelectedIPs(Filter{}, snapshot))
}

func TestCollectSnapshot_AppliesFilter(t *testing.T) {
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
		{Name: "wlan0", IP: ip("192.168.1.7"), Index: 3},
	}}

	snapshot, err := CollectSnapshot(enum, FilterFromValues([]string{"wlan0"}))
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "wlan0", snapshot[0].Name)
}

func TestCollectSnapshot_PermutationInsensitive(t *testing.T) {
	addrs := []Addr{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
		{Name: "eth0", IP: ip("fe80::1"), Index: 2},
		{Name: "wlan0", IP: ip("192.168.1.7"), Index: 3},
	}
	reversed := []Addr{addrs[2], addrs[1], addrs[0]}

	a, err := CollectSnapshot(&fakeEnumerator{addrs: addrs}, Filter{})
	require.NoError(t, err)
	b, err := CollectSnapshot(&fakeEnumerator{addrs: reversed}, Filter{})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.True(t, a.Equal(a))
}

func TestCollectSnapshot_Deduplicates(t *testing.T) {
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
	}}

	snapshot, err := CollectSnapshot(enum, Filter{})
	require.NoError(t, err)
	assert.Len(t, snapshot, 1)
}

func TestCollectSnapshot_SortedByNameThenIP(t *testing.T) {
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "wlan0", IP: ip("192.168.1.7"), Index: 3},
		{Name: "eth0", IP: ip("10.0.0.6"), Index: 2},
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
	}}

	snapshot, err := CollectSnapshot(enum, Filter{})
	require.NoError(t, err)
	require.Len(t, snapshot, 3)
	assert.Equal(t, "eth0", snapshot[0].Name)
	assert.True(t, snapshot[0].IP.Equal(ip("10.0.0.5")))
	assert.True(t, snapshot[1].IP.Equal(ip("10.0.0.6")))
	assert.Equal(t, "wlan0", snapshot[2].Name)
}

func TestCollectSnapshot_PropagatesError(t *testing.T) {
	enumErr := errors.New("netlink down")
	_, err := CollectSnapshot(&fakeEnumerator{err: enumErr}, Filter{})
	assert.ErrorIs(t, err, enumErr)
}

func TestSnapshot_EqualDifferentLengths(t *testing.T) {
	a := Snapshot{{Name: "eth0", IP: ip("10.0.0.5")}}
	assert.False(t, a.Equal(nil))
	assert.False(t, Snapshot{}.Equal(a))
	assert.True(t, Snapshot{}.Equal(nil))
}

func TestSnapshot_IPsDeduplicated(t *testing.T) {
	s := Snapshot{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
		{Name: "eth0.100", IP: ip("10.0.0.5"), Index: 4},
		{Name: "wlan0", IP: ip("192.168.1.7"), Index: 3},
	}

	ips := s.IPs()
	require.Len(t, ips, 2)
	assert.True(t, ips[0].Equal(ip("10.0.0.5")))
	assert.True(t, ips[1].Equal(ip("192.168.1.7")))
}

func TestSelectedIPs_AllMeansNoRestriction(t *testing.T) {
	s := Snapshot{{Name: "eth0", IP: ip("10.0.0.5"), Index: 2}}
	assert.Empty(t, SelectedIPs(Filter{}, s))
}

func TestSelectedIPs_OnlyReturnsSnapshotIPs(t *testing.T) {
	filter := FilterFromValues([]string{"eth0"})
	s := Snapshot{
		{Name: "eth0", IP: ip("fe80::1"), Index: 2},
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
	}

	ips := SelectedIPs(filter, s)
	require.Len(t, ips, 2)
	// IPv4 sorts below IPv6 in the 16-byte order
	assert.True(t, ips[0].Equal(ip("10.0.0.5")))
	assert.True(t, ips[1].Equal(ip("fe80::1")))
}

func TestMissingInterfaces_AllAlwaysEmpty(t *testing.T) {
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
	}}

	missing, err := MissingInterfaces(enum, Filter{})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMissingInterfaces_ReportsAbsentNames(t *testing.T) {
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "eth0", IP: ip("10.0.0.5"), Index: 2},
		{Name: "lo", IP: ip("127.0.0.1"), Index: 1, Loopback: true},
	}}

	missing, err := MissingInterfaces(enum, FilterFromValues([]string{"wlan0", "eth0"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"wlan0"}, missing)
}

func TestMissingInterfaces_ChecksFullEnumeration(t *testing.T) {
	// Loopback counts as present: missing means absent from the host,
	// not filtered out.
	enum := &fakeEnumerator{addrs: []Addr{
		{Name: "lo", IP: ip("127.0.0.1"), Index: 1, Loopback: true},
	}}

	missing, err := MissingInterfaces(enum, FilterFromValues([]string{"lo"}))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMissingInterfaces_PropagatesError(t *testing.T) {
	enumErr := errors.New("netlink down")
	_, err := MissingInterfaces(&fakeEnumerator{err: enumErr}, FilterFromValues([]string{"eth0"}))
	assert.ErrorIs(t, err, enumErr)
}
