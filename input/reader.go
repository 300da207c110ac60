// Package input reads IPv4 addresses from line oriented sources.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/projectdiscovery/mapcidr"
	"github.com/tidwall/gjson"

	"project/subnet-aggregator/cidr"
)

// Stdin is the input name that selects standard input.
const Stdin = "-"

// DefaultMinExpandPrefixLength bounds CIDR expansion to at most a /16.
const DefaultMinExpandPrefixLength = 16

const ctxCheckInterval = 4096

// maxLineSize bounds a single line, JSON-lines records can be large.
const maxLineSize = 1024 * 1024

// Options tune how lines are turned into addresses.
type Options struct {
	// JSONField is a gjson path. When set every line is a JSON document and
	// the address is read from that path.
	JSONField string
	// MinExpandPrefixLength is the widest CIDR block accepted as input.
	MinExpandPrefixLength int
}

// Reader collects addresses from inputs.
type Reader struct {
	opts Options
}

// NewReader creates a Reader.
func NewReader(opts Options) *Reader {
	if opts.MinExpandPrefixLength == 0 {
		opts.MinExpandPrefixLength = DefaultMinExpandPrefixLength
	}
	return &Reader{opts: opts}
}

// ReadFile opens name (see Open) and adds its addresses to into.
func (r *Reader) ReadFile(ctx context.Context, name string, into cidr.AddressSet) error {
	rc, err := Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return r.Read(ctx, name, rc, into)
}

// Read adds every address found in src to into. Blank lines and lines
// starting with '#' are skipped. Reading stops at the first malformed entry
// with a *ParseError.
func (r *Reader) Read(ctx context.Context, name string, src io.Reader, into cidr.AddressSet) error {
	scanner := newScanner(src)
	line := 0
	for scanner.Scan() {
		line++
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := r.readEntry(text, into); err != nil {
			return &ParseError{Source: name, Line: line, Text: text, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

func (r *Reader) readEntry(text string, into cidr.AddressSet) error {
	entry := text
	if r.opts.JSONField != "" {
		field := gjson.Get(text, r.opts.JSONField)
		if !field.Exists() || field.String() == "" {
			return fmt.Errorf("%w at %q", ErrMissingField, r.opts.JSONField)
		}
		entry = strings.TrimSpace(field.String())
	}

	if !strings.Contains(entry, "/") {
		a, err := ParseAddress(entry)
		if err != nil {
			return err
		}
		into.Add(a)
		return nil
	}
	return r.expand(entry, into)
}

// expand adds every address of a CIDR block.
func (r *Reader) expand(entry string, into cidr.AddressSet) error {
	n, err := ParseNetwork(entry)
	if err != nil {
		return err
	}
	if n.PrefixLength() < r.opts.MinExpandPrefixLength {
		return fmt.Errorf("%w: /%d is wider than /%d", ErrPrefixTooWide, n.PrefixLength(), r.opts.MinExpandPrefixLength)
	}
	ips, err := mapcidr.IPAddresses(n.String())
	if err != nil {
		return fmt.Errorf("failed to expand %s: %w", n, err)
	}
	for _, ip := range ips {
		a, err := ParseAddress(ip)
		if err != nil {
			return err
		}
		into.Add(a)
	}
	return nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// ReadNetworks reads a list of networks, one per line, such as a previously
// published block list. Repeated entries are returned once, sorted.
func ReadNetworks(name string) ([]cidr.Network, error) {
	rc, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var nets []cidr.Network
	scanner := newScanner(rc)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		n, err := ParseNetwork(text)
		if err != nil {
			return nil, &ParseError{Source: name, Line: line, Text: text, Err: err}
		}
		nets = append(nets, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return cidr.Deduplicate(nets), nil
}

// Open opens an input by name. "-" is standard input; names ending in .gz or
// .zst are decompressed.
func Open(name string) (io.ReadCloser, error) {
	if name == Stdin || name == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", name, err)
	}

	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read zstd input %s: %w", name, err)
		}
		return &decodedFile{Reader: dec, closeDecoder: func() error { dec.Close(); return nil }, file: f}, nil
	case strings.HasSuffix(name, ".gz"):
		dec, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read gzip input %s: %w", name, err)
		}
		return &decodedFile{Reader: dec, closeDecoder: dec.Close, file: f}, nil
	}
	return f, nil
}

// decodedFile closes the decoder before the file beneath it.
type decodedFile struct {
	io.Reader
	closeDecoder func() error
	file         *os.File
}

func (d *decodedFile) Close() error {
	err := d.closeDecoder()
	if ferr := d.file.Close(); err == nil {
		err = ferr
	}
	return err
}
