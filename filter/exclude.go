// Package filter drops addresses that must never be reported, such as the
// operator's own networks.
package filter

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/gaissmai/bart"

	"project/subnet-aggregator/cidr"
)

// ErrNotIPv4 is returned for an IPv6 exclusion entry.
var ErrNotIPv4 = errors.New("only IPv4 ranges can be excluded")

// Excluder matches addresses against a set of excluded ranges.
type Excluder struct {
	table bart.Table[string]
	size  int
}

// NewExcluder builds an Excluder from CIDR or bare address entries.
func NewExcluder(entries []string) (*Excluder, error) {
	e := &Excluder{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		pfx, err := parseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion %q: %w", entry, err)
		}
		e.table.Insert(pfx.Masked(), entry)
		e.size++
	}
	return e, nil
}

func parseEntry(entry string) (netip.Prefix, error) {
	var pfx netip.Prefix
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return pfx, err
		}
		pfx = p
	} else {
		a, err := netip.ParseAddr(entry)
		if err != nil {
			return pfx, err
		}
		pfx = netip.PrefixFrom(a, a.BitLen())
	}
	if !pfx.Addr().Is4() {
		return pfx, ErrNotIPv4
	}
	return pfx, nil
}

// Len returns the number of excluded ranges.
func (e *Excluder) Len() int { return e.size }

// Excludes reports whether a lies inside an excluded range.
func (e *Excluder) Excludes(a cidr.Address) bool {
	if e.size == 0 {
		return false
	}
	return e.table.Contains(netip.AddrFrom4(a))
}

// Overlaps reports whether n shares any address with an excluded range.
// Networks folded upwards can cover excluded space again.
func (e *Excluder) Overlaps(n cidr.Network) bool {
	if e.size == 0 {
		return false
	}
	return e.table.OverlapsPrefix(n.Prefix())
}

// Apply removes excluded addresses from set and returns how many were removed.
func (e *Excluder) Apply(set cidr.AddressSet) int {
	if e.size == 0 {
		return 0
	}
	removed := 0
	for a := range set {
		if e.Excludes(a) {
			delete(set, a)
			removed++
		}
	}
	return removed
}
