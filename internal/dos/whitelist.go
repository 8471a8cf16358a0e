package dos

import "net/netip"

// Whitelist is the set of source networks that bypass all classification.
// Lookups are a linear scan; realistic deployments carry well under 64
// entries.
type Whitelist []netip.Prefix

// Contains reports whether addr falls inside any whitelisted network.
func (w Whitelist) Contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	for _, net := range w {
		if net.Contains(addr) {
			return true
		}
	}
	return false
}
