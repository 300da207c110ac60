package aggregate

import (
	"project/subnet-aggregator/cidr"
)

// Default thresholds.
const (
	DefaultThresholdClassC             = 3
	DefaultLargerNetCoveragePercentage = 0.51
)

// Params holds the two thresholds driving a summary.
type Params struct {
	// ThresholdClassC is the number of distinct addresses a /24 needs.
	ThresholdClassC int
	// LargerNetCoveragePercentage is the fraction of a broader network's
	// address space that selected /24 networks must cover.
	LargerNetCoveragePercentage float64
}

// DefaultParams returns the default thresholds.
func DefaultParams() Params {
	return Params{
		ThresholdClassC:             DefaultThresholdClassC,
		LargerNetCoveragePercentage: DefaultLargerNetCoveragePercentage,
	}
}

// Summarize runs the classifier and the aggregator over addresses. It returns
// the selected /24 networks alongside the final networks.
func Summarize(addresses cidr.AddressSet, p Params) (classC, networks cidr.Set) {
	classC = ClassifyClassC(addresses, p.ThresholdClassC)
	return classC, Aggregate(classC, p.LargerNetCoveragePercentage)
}
