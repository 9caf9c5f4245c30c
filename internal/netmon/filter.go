package netmon

import (
	"sort"
	"strings"
)

// Filter selects which network interfaces are relevant for advertisement.
// The zero value matches every interface.
type Filter struct {
	only map[string]struct{} // nil means all interfaces match
}

// FilterFromValues builds a Filter from raw CLI values. Each value may
// contain several comma-separated interface names. A "*" anywhere, or no
// usable names at all, selects all interfaces.
func FilterFromValues(values []string) Filter {
	selected := make(map[string]struct{})
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			name := strings.TrimSpace(item)
			if name == "" {
				continue
			}
			if name == "*" {
				return Filter{}
			}
			selected[name] = struct{}{}
		}
	}

	if len(selected) == 0 {
		return Filter{}
	}
	return Filter{only: selected}
}

// IsAll reports whether the filter matches every interface.
func (f Filter) IsAll() bool {
	return f.only == nil
}

// Matches reports whether the named interface is selected. Names are
// compared case-sensitively.
func (f Filter) Matches(name string) bool {
	if f.only == nil {
		return true
	}
	_, ok := f.only[name]
	return ok
}

// Names returns the sorted selected interface names, or nil when the
// filter matches everything.
func (f Filter) Names() []string {
	if f.only == nil {
		return nil
	}
	names := make([]string, 0, len(f.only))
	for name := range f.only {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f Filter) String() string {
	if f.only == nil {
		return "*"
	}
	return strings.Join(f.Names(), ",")
}
