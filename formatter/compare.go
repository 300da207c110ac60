package formatter

import (
	"project/subnet-aggregator/cidr"
)

// Difference lists how a published list deviates from the generated one.
type Difference struct {
	// Missing networks are generated but not published (should be added).
	Missing []cidr.Network
	// Extra networks are published but no longer generated (should be removed).
	Extra []cidr.Network
}

// Empty reports whether both lists hold the same networks.
func (d Difference) Empty() bool {
	return len(d.Missing) == 0 && len(d.Extra) == 0
}

// Compare compares the generated networks with the published ones.
func Compare(generated, published []cidr.Network) Difference {
	generatedSet := cidr.NewSet(generated...)
	publishedSet := cidr.NewSet(published...)

	var d Difference
	for _, n := range generatedSet.Sorted() {
		if !publishedSet.Has(n) {
			d.Missing = append(d.Missing, n)
		}
	}
	for _, n := range publishedSet.Sorted() {
		if !generatedSet.Has(n) {
			d.Extra = append(d.Extra, n)
		}
	}
	return d
}
