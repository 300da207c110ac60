// Fichier: formatter/output.go

package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"project/subnet-aggregator/cidr"
)

// Output formats.
const (
	FormatPlain = "plain"
	FormatPF    = "pf"
	FormatDNSBL = "dnsbl"
)

const maxLineLength = 72
const lineContinuation = " \\"

// Options select and tune the rendering.
type Options struct {
	Format    string
	TableName string
	Zone      string
	// RunID and Generated are written into the header of pf and dnsbl output.
	RunID     string
	Generated time.Time
}

// Write renders nets to w in the selected format. nets are expected sorted.
func Write(w io.Writer, nets []cidr.Network, opts Options) error {
	var lines []string
	switch opts.Format {
	case FormatPlain, "":
		lines = Plain(nets)
	case FormatPF:
		lines = append(header("#", "pf(4) table", opts), PFTable(nets, opts.TableName)...)
	case FormatDNSBL:
		records, err := DNSBL(nets, opts.Zone)
		if err != nil {
			return err
		}
		lines = append(header(";", "DNSBL zone records", opts), fmt.Sprintf("$TTL %d", dnsblTTL))
		lines = append(lines, records...)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}

	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Plain renders one a.b.c.d/len per line.
func Plain(nets []cidr.Network) []string {
	lines := make([]string, 0, len(nets))
	for _, n := range nets {
		lines = append(lines, n.String())
	}
	return lines
}

func header(comment, kind string, opts Options) []string {
	generated := opts.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	h := []string{
		comment,
		fmt.Sprintf("%s %s generated by subnet-aggregator [ %s ]", comment, kind, generated.UTC().Format(time.RFC3339)),
	}
	if opts.RunID != "" {
		h = append(h, fmt.Sprintf("%s run %s", comment, opts.RunID))
	}
	return append(h, comment+" Do not edit manually!", comment)
}

// PFTable renders a pf(4) table definition. Entries are packed onto
// continuation lines no longer than maxLineLength.
func PFTable(nets []cidr.Network, name string) []string {
	lines := []string{fmt.Sprintf("table <%s> persist {%s", name, lineContinuation)}

	var current []string
	currentLength := 0
	for _, n := range nets {
		entry := n.String()
		// Check if adding this entry would exceed the limit (tab, spaces and continuation)
		if len(current) > 0 && currentLength+len(entry)+1+len(lineContinuation) > maxLineLength {
			lines = append(lines, "\t"+strings.Join(current, " ")+lineContinuation)
			current, currentLength = nil, 0
		}
		current = append(current, entry)
		currentLength += len(entry) + 1
	}
	if len(current) > 0 {
		lines = append(lines, "\t"+strings.Join(current, " ")+lineContinuation)
	}

	return append(lines, "}")
}
