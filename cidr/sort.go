// Fichier: cidr/sort.go

package cidr

import (
	"sort"
)

// Deduplicate removes repeated networks and returns them sorted.
func Deduplicate(nets []Network) []Network {
	return NewSet(nets...).Sorted()
}

// Sort orders nets numerically.
func Sort(nets []Network) {
	sort.Slice(nets, func(i, j int) bool {
		return compareNetworks(nets[i], nets[j])
	})
}

// compareNetworks orders by network address first; for an identical address
// the wider network comes first, so a supernet precedes its first subnet.
func compareNetworks(a, b Network) bool {
	if a.net != b.net {
		return compareAddress(a.net, b.net)
	}
	return a.PrefixLength() < b.PrefixLength()
}

// Simple numerical address comparison.
func compareAddress(a, b Address) bool {
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
