package aggregate

import (
	"testing"

	"project/subnet-aggregator/cidr"
)

func addresses(addrs ...cidr.Address) cidr.AddressSet {
	s := make(cidr.AddressSet, len(addrs))
	for _, a := range addrs {
		s.Add(a)
	}
	return s
}

func classC(a, b, c byte) cidr.Network {
	return cidr.FromPrefixLength(cidr.Address{a, b, c, 0}, 24)
}

func assertSet(t *testing.T, got cidr.Set, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d networks %v, want %v", len(got), got.Sorted(), want)
	}
	for i, n := range got.Sorted() {
		if n.String() != want[i] {
			t.Errorf("network %d = %s, want %s", i, n, want[i])
		}
	}
}

func TestClassifyClassC(t *testing.T) {
	tests := []struct {
		name       string
		addresses  cidr.AddressSet
		hitsNeeded int
		want       []string
	}{
		{
			name: "threshold reached in one /24 only",
			addresses: addresses(
				cidr.Address{10, 0, 0, 1}, cidr.Address{10, 0, 0, 2}, cidr.Address{10, 0, 0, 3},
				cidr.Address{10, 1, 1, 1},
			),
			hitsNeeded: 3,
			want:       []string{"10.0.0.0/24"},
		},
		{
			name: "duplicates count once",
			addresses: addresses(
				cidr.Address{10, 0, 0, 1}, cidr.Address{10, 0, 0, 1}, cidr.Address{10, 0, 0, 2},
			),
			hitsNeeded: 3,
			want:       nil,
		},
		{
			name:       "zero threshold keeps every /24",
			addresses:  addresses(cidr.Address{10, 0, 0, 1}, cidr.Address{172, 16, 5, 9}),
			hitsNeeded: 0,
			want:       []string{"10.0.0.0/24", "172.16.5.0/24"},
		},
		{
			name:       "negative threshold keeps every /24",
			addresses:  addresses(cidr.Address{192, 168, 1, 1}),
			hitsNeeded: -5,
			want:       []string{"192.168.1.0/24"},
		},
		{
			name:       "empty input",
			addresses:  addresses(),
			hitsNeeded: 1,
			want:       nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSet(t, ClassifyClassC(tt.addresses, tt.hitsNeeded), tt.want...)
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	assertSet(t, Aggregate(cidr.NewSet(), 0.51))
}

func TestAggregateNoBroaderCoverage(t *testing.T) {
	in := cidr.NewSet(classC(10, 0, 0))
	assertSet(t, Aggregate(in, 0.51), "10.0.0.0/24")
}

func TestAggregateCoverageBoundary(t *testing.T) {
	in := cidr.NewSet(classC(10, 0, 0))

	// 256/512 == 0.5 exactly, the /23 is accepted
	assertSet(t, Aggregate(in, 0.5), "10.0.0.0/23")

	// just above the boundary nothing is folded
	assertSet(t, Aggregate(in, 0.5000001), "10.0.0.0/24")
}

func TestAggregateWholeClassB(t *testing.T) {
	in := make(cidr.Set)
	for i := 0; i < 256; i++ {
		in.Add(classC(10, 0, byte(i)))
	}
	assertSet(t, Aggregate(in, 0.51), "10.0.0.0/16")
	if len(in) != 256 {
		t.Errorf("input set was modified: %d members left", len(in))
	}
}

func TestAggregatePrefersWidestNetwork(t *testing.T) {
	// 10.0.0.0/24 .. 10.0.2.0/24 cover 3/4 of the /22, so the /22 wins over
	// the /23 made of the first two members
	in := cidr.NewSet(classC(10, 0, 0), classC(10, 0, 1), classC(10, 0, 2))
	assertSet(t, Aggregate(in, 0.75), "10.0.0.0/22")

	// at 0.8 the /22 is rejected and only the complete /23 is folded
	assertSet(t, Aggregate(in, 0.8), "10.0.0.0/23", "10.0.2.0/24")
}

func TestAggregateKeepsUnrelatedNetworks(t *testing.T) {
	in := cidr.NewSet(
		classC(10, 0, 0), classC(10, 0, 1),
		classC(192, 168, 7),
	)
	assertSet(t, Aggregate(in, 1.0), "10.0.0.0/23", "192.168.7.0/24")
}

func TestAggregateNoDoubleAggregation(t *testing.T) {
	in := make(cidr.Set)
	for i := 0; i < 16; i++ {
		in.Add(classC(172, 16, byte(i)))
	}
	got := Aggregate(in, 1.0)
	assertSet(t, got, "172.16.0.0/20")

	nets := got.Sorted()
	for _, a := range nets {
		for _, b := range nets {
			if a != b && a.ContainsSubnet(b) {
				t.Errorf("result holds %s and its subnet %s", a, b)
			}
		}
	}
}

func TestAggregateZeroCoverageFoldsToWidest(t *testing.T) {
	in := cidr.NewSet(classC(10, 200, 3), classC(10, 7, 1))
	assertSet(t, Aggregate(in, 0), "10.0.0.0/8")
}

func TestAggregateIdempotent(t *testing.T) {
	in := cidr.NewSet(classC(10, 0, 0), classC(10, 0, 1), classC(10, 0, 2), classC(10, 9, 9))
	once := Aggregate(in, 0.75)
	twice := Aggregate(once, 0.75)
	if len(twice) != len(once) {
		t.Fatalf("second pass changed the result: %v -> %v", once.Sorted(), twice.Sorted())
	}
	for n := range once {
		if !twice.Has(n) {
			t.Errorf("second pass dropped %s", n)
		}
	}
}

func TestCandidatesOrdering(t *testing.T) {
	got := candidates(cidr.NewSet(classC(10, 0, 0), classC(10, 0, 1)))
	if len(got) != 16 {
		t.Fatalf("got %d candidates, want 16 (/8 .. /23 shared)", len(got))
	}
	for i, n := range got {
		if want := MinPrefixLength + i; n.PrefixLength() != want {
			t.Errorf("candidate %d = %s, want prefix length %d", i, n, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	addrs := make(cidr.AddressSet)
	for i := 0; i < 256; i++ {
		addrs.Add(cidr.Address{10, 0, byte(i), 1})
	}
	classC, nets := Summarize(addrs, Params{ThresholdClassC: 1, LargerNetCoveragePercentage: 0.51})
	if len(classC) != 256 {
		t.Errorf("got %d class C networks, want 256", len(classC))
	}
	assertSet(t, nets, "10.0.0.0/16")
}

func TestSummarizeScenarioThreshold(t *testing.T) {
	addrs := addresses(
		cidr.Address{10, 0, 0, 1}, cidr.Address{10, 0, 0, 2}, cidr.Address{10, 0, 0, 3},
		cidr.Address{10, 1, 1, 1},
	)
	_, nets := Summarize(addrs, DefaultParams())
	assertSet(t, nets, "10.0.0.0/24")
}
