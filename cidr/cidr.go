// Fichier: cidr/cidr.go

package cidr

import (
	"fmt"
	"math/bits"
	"net/netip"
)

// Address is a raw IPv4 address.
type Address [4]byte

// String renders the address in dotted-decimal notation.
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// Network represents an IPv4 network (CIDR). The network address is always
// stored pre-masked, so two Networks are equal iff they denote the same range.
type Network struct {
	net  [4]byte
	mask [4]byte
}

// canonical mask bytes indexed by the number of prefix bits inside the byte
var maskBytes = [9]byte{0, 128, 192, 224, 240, 248, 252, 254, 255}

// FromAddress builds the network that address belongs to under mask.
func FromAddress(address Address, mask [4]byte) Network {
	return Network{
		net: [4]byte{
			address[0] & mask[0],
			address[1] & mask[1],
			address[2] & mask[2],
			address[3] & mask[3],
		},
		mask: mask,
	}
}

// FromPrefixLength builds the network of the given prefix length that address
// belongs to. It panics if prefixLength is outside 0..32.
func FromPrefixLength(address Address, prefixLength int) Network {
	return FromAddress(address, MaskFromPrefixLength(prefixLength))
}

// MaskFromPrefixLength returns the canonical mask bytes for a prefix length.
//
//	24 -> 255.255.255.0
//	23 -> 255.255.254.0
//	22 -> 255.255.252.0
func MaskFromPrefixLength(prefixLength int) [4]byte {
	if prefixLength < 0 || prefixLength > 32 {
		panic(fmt.Sprintf("cidr: invalid prefix length %d", prefixLength))
	}
	var mask [4]byte
	for i := range mask {
		n := min(max(prefixLength-8*i, 0), 8)
		mask[i] = maskBytes[n]
	}
	return mask
}

// Net returns the (masked) network address.
func (n Network) Net() Address { return n.net }

// Mask returns the mask bytes.
func (n Network) Mask() [4]byte { return n.mask }

// PrefixLength counts the leading one-bits of the mask. Counting stops at the
// first byte that is not 255, so a non-contiguous mask such as 255.0.255.0
// reports only the contiguous part (8).
func (n Network) PrefixLength() int {
	length := 0
	for _, b := range n.mask {
		ones := bits.LeadingZeros8(^b)
		length += ones
		if ones < 8 {
			break
		}
	}
	return length
}

// AddressSpaceSize returns the number of addresses the network spans.
func (n Network) AddressSpaceSize() uint64 {
	// 32 -> 1, 24 -> 256, 0 -> 2^32
	return uint64(1) << (32 - n.PrefixLength())
}

// ContainsSubnet reports whether other lies completely inside n. A network of
// equal prefix length only contains itself.
func (n Network) ContainsSubnet(other Network) bool {
	if n.PrefixLength() > other.PrefixLength() {
		return false
	}
	return FromAddress(other.net, n.mask) == n
}

// Contains reports whether address lies inside n.
func (n Network) Contains(address Address) bool {
	return FromAddress(address, n.mask).net == n.net
}

// Prefix converts n into a netip.Prefix.
func (n Network) Prefix() netip.Prefix {
	return netip.PrefixFrom(netip.AddrFrom4(n.net), n.PrefixLength())
}

// String renders n as a.b.c.d/len.
func (n Network) String() string {
	return fmt.Sprintf("%s/%d", Address(n.net), n.PrefixLength())
}

// Set is an unordered set of networks.
type Set map[Network]struct{}

// NewSet returns a set holding nets.
func NewSet(nets ...Network) Set {
	s := make(Set, len(nets))
	for _, n := range nets {
		s.Add(n)
	}
	return s
}

// Add inserts n.
func (s Set) Add(n Network) { s[n] = struct{}{} }

// Has reports whether n is in the set.
func (s Set) Has(n Network) bool {
	_, ok := s[n]
	return ok
}

// Clone returns a shallow copy of s.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Sorted returns the members of s in numeric order.
func (s Set) Sorted() []Network {
	nets := make([]Network, 0, len(s))
	for n := range s {
		nets = append(nets, n)
	}
	Sort(nets)
	return nets
}

// AddressSet is a deduplicated set of addresses.
type AddressSet map[Address]struct{}

// Add inserts a.
func (s AddressSet) Add(a Address) { s[a] = struct{}{} }
