package aggregate

import (
	"sort"

	"project/subnet-aggregator/cidr"
)

// MinPrefixLength is the widest network the aggregator ever proposes.
const MinPrefixLength = 8

// classCSize is the coverage a single /24 member contributes.
const classCSize = 256

// Aggregate folds classC networks into broader networks. Candidates are
// evaluated widest first; a candidate is accepted when the /24 members it
// contains cover at least coveragePct of its address space, replacing those
// members in the result and pre-empting every narrower candidate inside it.
// The input set is left untouched.
func Aggregate(classC cidr.Set, coveragePct float64) cidr.Set {
	pending := candidates(classC)
	result := classC.Clone()

	for len(pending) > 0 {
		larger := pending[0]
		pending = pending[1:]

		matching := make(cidr.Set)
		for n := range classC {
			if larger.ContainsSubnet(n) {
				matching.Add(n)
			}
		}

		coverage := float64(len(matching)*classCSize) / float64(larger.AddressSpaceSize())
		if coverage < coveragePct {
			continue
		}

		result.Add(larger)
		for n := range matching {
			delete(result, n)
		}
		pending = withoutSubnetsOf(pending, larger)
	}

	return result
}

// candidates returns every network broader than a member of nets, down to
// MinPrefixLength, deduplicated and ordered widest first.
func candidates(nets cidr.Set) []cidr.Network {
	unique := make(cidr.Set)
	for n := range nets {
		for l := n.PrefixLength() - 1; l >= MinPrefixLength; l-- {
			unique.Add(cidr.FromPrefixLength(n.Net(), l))
		}
	}

	sorted := unique.Sorted()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PrefixLength() < sorted[j].PrefixLength()
	})
	return sorted
}

func withoutSubnetsOf(pending []cidr.Network, accepted cidr.Network) []cidr.Network {
	kept := pending[:0]
	for _, n := range pending {
		if !accepted.ContainsSubnet(n) {
			kept = append(kept, n)
		}
	}
	return kept
}
