package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/rs/xid"

	"project/subnet-aggregator/batch"
	"project/subnet-aggregator/cidr"
	"project/subnet-aggregator/config"
	"project/subnet-aggregator/filter"
	"project/subnet-aggregator/formatter"
	"project/subnet-aggregator/input"
)

// Runner contains the internal logic of the program
type Runner struct {
	options  *Options
	cfg      *config.Config
	reader   *input.Reader
	excluder *filter.Excluder
	output   io.Writer
	runID    string
}

// NewRunner resolves the configuration and prepares the collaborators.
func NewRunner(options *Options) (*Runner, error) {
	cfg, err := options.resolveConfig()
	if err != nil {
		return nil, err
	}
	excluder, err := filter.NewExcluder(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	gologger.Verbose().Msgf("Excluding %d ranges", excluder.Len())
	return &Runner{
		options:  options,
		cfg:      cfg,
		reader:   input.NewReader(input.Options{JSONField: cfg.JSONField}),
		excluder: excluder,
		output:   os.Stdout,
		runID:    xid.New().String(),
	}, nil
}

// Run reads the inputs, aggregates them and writes the networks.
func (r *Runner) Run(ctx context.Context) error {
	inputs := []string(r.options.Inputs)
	if len(inputs) == 0 {
		inputs = []string{input.Stdin}
	}

	jobs, err := r.readJobs(ctx, inputs)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		gologger.Verbose().Msgf("Analyzing %d addresses from %s...", len(job.Addresses), job.Name)
	}
	gologger.Verbose().Msgf("To select a class C (/24) net, it takes %d corresponding addresses", r.cfg.ThresholdClassC)
	gologger.Verbose().Msgf("To select a larger net (/23 upwards), it takes %v of its space covered by class C nets", r.cfg.LargerNetCoveragePercentage)

	br := batch.NewRunner(r.cfg.Params(), r.cfg.ConcurrencyLimit)
	results, err := br.Run(ctx, jobs)
	if err != nil {
		return err
	}
	gologger.Verbose().Msgf("Aggregated %d of %d inputs", br.Processed(), len(jobs))

	if r.options.Compare != "" && r.options.Separate {
		gologger.Warning().Msg("-compare is ignored with -separate")
	}

	names := make([]string, len(results))
	for i, res := range results {
		names[i] = res.Name
	}
	tables := r.tableNames(names)

	generated := time.Now()
	for i, res := range results {
		nets := res.Networks.Sorted()
		gologger.Info().Msgf("Identified %d networks in %s (%d class C networks selected)", len(nets), res.Name, len(res.ClassC))
		for _, n := range nets {
			if r.excluder.Overlaps(n) {
				gologger.Warning().Msgf("Network %s overlaps an excluded range", n)
			}
		}

		if err := r.write(res.Name, tables[i], nets, generated); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		if r.options.Compare != "" && !r.options.Separate {
			if err := r.compare(nets); err != nil {
				return err
			}
		}
	}
	return nil
}

// readJobs reads every input, either into one merged job or one job per input.
func (r *Runner) readJobs(ctx context.Context, inputs []string) ([]batch.Job, error) {
	var jobs []batch.Job
	merged := batch.Job{Name: strings.Join(inputs, ","), Addresses: make(cidr.AddressSet)}

	for _, name := range inputs {
		addresses := merged.Addresses
		if r.options.Separate {
			addresses = make(cidr.AddressSet)
		}
		before := len(addresses)
		if err := r.reader.ReadFile(ctx, name, addresses); err != nil {
			return nil, err
		}
		gologger.Verbose().Msgf("Read %d new addresses from %s", len(addresses)-before, name)

		if r.options.Separate {
			jobs = append(jobs, batch.Job{Name: name, Addresses: addresses})
		}
	}
	if !r.options.Separate {
		jobs = append(jobs, merged)
	}

	for _, job := range jobs {
		if removed := r.excluder.Apply(job.Addresses); removed > 0 {
			gologger.Info().Msgf("Ignored %d excluded addresses in %s", removed, job.Name)
		}
	}
	return jobs, nil
}

func (r *Runner) write(name, table string, nets []cidr.Network, generated time.Time) error {
	opts := formatter.Options{
		Format:    r.cfg.Format,
		TableName: table,
		Zone:      r.cfg.Zone,
		RunID:     r.runID,
		Generated: generated,
	}
	if r.options.Separate && r.cfg.Format == formatter.FormatPlain {
		if _, err := fmt.Fprintf(r.output, "# %s\n", name); err != nil {
			return err
		}
	}
	return formatter.Write(r.output, nets, opts)
}

// compare logs how the published list deviates from the generated networks.
func (r *Runner) compare(nets []cidr.Network) error {
	published, err := input.ReadNetworks(r.options.Compare)
	if err != nil {
		return fmt.Errorf("failed to read published list: %w", err)
	}

	d := formatter.Compare(nets, published)
	if d.Empty() {
		gologger.Info().Msgf("OK: Published list %s matches generated networks (%d entries).", r.options.Compare, len(nets))
		return nil
	}

	gologger.Warning().Msgf("DIFFERENCE: Published list %s does not match generated networks.", r.options.Compare)
	for _, n := range d.Missing {
		gologger.Info().Msgf("  + %s (missing in published list)", n)
	}
	for _, n := range d.Extra {
		gologger.Info().Msgf("  - %s (no longer generated)", n)
	}
	return nil
}

// tableNames returns the pf table name of every result. With -separate each
// input gets its own table, and inputs sharing a base name are numbered.
func (r *Runner) tableNames(names []string) []string {
	tables := make([]string, len(names))
	if !r.options.Separate {
		for i := range tables {
			tables[i] = r.cfg.TableName
		}
		return tables
	}

	seen := make(map[string]int, len(names))
	for i, name := range names {
		table := r.cfg.TableName + "_" + tableSuffix(name)
		seen[table]++
		for n := seen[table]; n > 1; n++ {
			candidate := fmt.Sprintf("%s_%d", table, n)
			if seen[candidate] == 0 {
				seen[candidate]++
				table = candidate
				break
			}
		}
		tables[i] = table
	}
	return tables
}

// tableSuffix derives a pf table name suffix from an input name.
func tableSuffix(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, base)
}
