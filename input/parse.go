package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"project/subnet-aggregator/cidr"
)

var (
	// ErrSegmentCount is returned for an address without exactly 4 dot separated parts.
	ErrSegmentCount = errors.New("not 4 parts separated by a '.'")
	// ErrInvalidOctet is returned for a part that is not a number in 0..255.
	ErrInvalidOctet = errors.New("invalid octet")
	// ErrInvalidPrefix is returned for a prefix length that is not a number in 0..32.
	ErrInvalidPrefix = errors.New("invalid prefix length")
	// ErrPrefixTooWide is returned for a CIDR block too large to expand into addresses.
	ErrPrefixTooWide = errors.New("prefix too wide to expand")
	// ErrMissingField is returned when a JSON line does not hold the address field.
	ErrMissingField = errors.New("address field missing")
)

// ParseError describes an entry that could not be read.
type ParseError struct {
	Source string // input name
	Line   int    // 1-based line number
	Text   string // offending entry
	Err    error  // one of the Err* values above, possibly wrapped
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: parse %q: %v", e.Source, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseAddress parses a dotted-quad IPv4 address.
func ParseAddress(s string) (cidr.Address, error) {
	var result cidr.Address
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return result, ErrSegmentCount
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return result, fmt.Errorf("%w %q", ErrInvalidOctet, p)
		}
		result[i] = byte(n)
	}
	return result, nil
}

// ParseNetwork parses a.b.c.d/len. A bare address is read as a /32. Host bits
// are masked off.
func ParseNetwork(s string) (cidr.Network, error) {
	addr, bits, found := strings.Cut(s, "/")
	a, err := ParseAddress(addr)
	if err != nil {
		return cidr.Network{}, err
	}
	if !found {
		return cidr.FromPrefixLength(a, 32), nil
	}
	l, err := parsePrefixLength(bits)
	if err != nil {
		return cidr.Network{}, err
	}
	return cidr.FromPrefixLength(a, l), nil
}

func parsePrefixLength(s string) (int, error) {
	l, err := strconv.ParseUint(s, 10, 8)
	if err != nil || l > 32 {
		return 0, fmt.Errorf("%w %q", ErrInvalidPrefix, s)
	}
	return int(l), nil
}
