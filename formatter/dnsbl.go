package formatter

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"

	"project/subnet-aggregator/cidr"
)

const dnsblTTL = 3600

// listed is the answer a DNSBL returns for a listed address.
var listed = net.IPv4(127, 0, 0, 2).To4()

// DNSBL renders A and TXT records listing nets under zone. A DNSBL is queried
// with the reversed octets of a single address, so every network is split
// into octet-aligned blocks and each block is published as a wildcard.
func DNSBL(nets []cidr.Network, zone string) ([]string, error) {
	if _, ok := dns.IsDomainName(zone); !ok || zone == "" {
		return nil, fmt.Errorf("invalid DNSBL zone %q", zone)
	}
	origin := dns.Fqdn(zone)

	var records []string
	for _, n := range nets {
		names, err := blockNames(n, origin)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			hdr := dns.RR_Header{Name: name, Class: dns.ClassINET, Ttl: dnsblTTL}
			a := &dns.A{Hdr: hdr, A: listed}
			a.Hdr.Rrtype = dns.TypeA
			txt := &dns.TXT{Hdr: hdr, Txt: []string{"listed: " + n.String()}}
			txt.Hdr.Rrtype = dns.TypeTXT
			records = append(records, a.String(), txt.String())
		}
	}
	return records, nil
}

// blockNames returns the owner names covering n, one per octet-aligned block.
//
//	10.0.0.0/16 -> *.0.10.<origin>
//	10.0.4.0/22 -> *.4.0.10 .. *.7.0.10.<origin>
func blockNames(n cidr.Network, origin string) ([]string, error) {
	octets := (n.PrefixLength() + 7) / 8
	blocks := 1 << (octets*8 - n.PrefixLength())
	step := uint32(1) << (32 - octets*8)

	base := n.Net()
	start := binary.BigEndian.Uint32(base[:])

	names := make([]string, 0, blocks)
	for i := 0; i < blocks; i++ {
		var addr cidr.Address
		binary.BigEndian.PutUint32(addr[:], start+uint32(i)*step)

		rev, err := dns.ReverseAddr(addr.String())
		if err != nil {
			return nil, fmt.Errorf("failed to reverse %s: %w", addr, err)
		}
		// d.c.b.a.in-addr.arpa. -> keep the significant octets only
		labels := dns.SplitDomainName(rev)[4-octets : 4]
		if octets < 4 {
			labels = append([]string{"*"}, labels...)
		}
		names = append(names, strings.Join(append(labels, origin), "."))
	}
	return names, nil
}
