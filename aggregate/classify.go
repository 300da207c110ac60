// Package aggregate summarizes observed IPv4 addresses into the CIDR networks
// they cluster in: addresses are first grouped into /24 networks that reach a
// hit threshold, which are then folded into broader networks when enough of
// the broader range is covered.
package aggregate

import (
	"project/subnet-aggregator/cidr"
)

// ClassCPrefixLength is the prefix length addresses are grouped by.
const ClassCPrefixLength = 24

var classCMask = cidr.MaskFromPrefixLength(ClassCPrefixLength)

// ClassifyClassC groups addresses into /24 networks and keeps those holding at
// least hitsNeeded distinct addresses. A hitsNeeded of zero or less keeps every
// /24 observed.
func ClassifyClassC(addresses cidr.AddressSet, hitsNeeded int) cidr.Set {
	hits := make(map[cidr.Network]int)
	for ip := range addresses {
		hits[cidr.FromAddress(ip, classCMask)]++
	}

	result := make(cidr.Set)
	for n, count := range hits {
		if count >= hitsNeeded {
			result.Add(n)
		}
	}
	return result
}
