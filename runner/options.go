package runner

import (
	"fmt"
	"strconv"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"

	"project/subnet-aggregator/config"
)

// DefaultConfigFile is used when no -config flag is given and the file exists.
var DefaultConfigFile = envutil.GetEnvOrDefault("SUBNET_AGGREGATOR_CONFIG", "subnet-aggregator.yaml")

// Options contains the command line options.
type Options struct {
	Inputs    goflags.StringSlice
	JSONField string
	Separate  bool

	ConfigFile      string
	// numeric settings are empty when the flag was not given
	ThresholdClassC string
	LargerNetPct    string
	Exclude         goflags.StringSlice
	Concurrency     string

	Format    string
	TableName string
	Zone      string
	Compare   string

	Verbose bool
	Silent  bool
	NoColor bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`subnet-aggregator summarizes IPv4 addresses into the CIDR networks they cluster in`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&options.Inputs, "input", "i", nil, "input files with one address per line (default stdin, .gz/.zst are decoded)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVarP(&options.JSONField, "json-field", "jf", "", "read JSON lines and take the address from this path (e.g. src.ip)"),
		flagSet.BoolVarP(&options.Separate, "separate", "sep", false, "aggregate every input file on its own"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", DefaultConfigFile, "yaml configuration file"),
		flagSet.StringVarP(&options.ThresholdClassC, "threshold-class-c", "c", "", fmt.Sprintf("addresses needed to select a /24 network (default %d)", config.Default().ThresholdClassC)),
		flagSet.StringVarP(&options.LargerNetPct, "larger-net-pct", "l", "", fmt.Sprintf("fraction of a larger network that selected /24 networks must cover (default %v)", config.Default().LargerNetCoveragePercentage)),
		flagSet.StringSliceVarP(&options.Exclude, "exclude", "e", nil, "ranges whose addresses are ignored (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVarP(&options.Concurrency, "concurrency", "cl", "", fmt.Sprintf("inputs aggregated in parallel with -separate (default %d)", config.DefaultConcurrencyLimit)),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Format, "format", "f", "", "output format (plain, pf, dnsbl)"),
		flagSet.StringVar(&options.TableName, "table", "", "pf table name"),
		flagSet.StringVar(&options.Zone, "zone", "", "DNSBL zone origin"),
		flagSet.StringVar(&options.Compare, "compare", "", "published list to compare the result with"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()
	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

// resolveConfig loads the configuration file, when present, and lets the
// command line override it.
func (options *Options) resolveConfig() (*config.Config, error) {
	cfg := config.Default()
	switch {
	case options.ConfigFile != "" && fileutil.FileExists(options.ConfigFile):
		loaded, err := config.LoadConfig(options.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		gologger.Verbose().Msgf("Configuration loaded from %s", options.ConfigFile)
	case options.ConfigFile != "" && options.ConfigFile != DefaultConfigFile:
		return nil, fmt.Errorf("config file %s does not exist", options.ConfigFile)
	}

	if options.ThresholdClassC != "" {
		hits, err := strconv.Atoi(options.ThresholdClassC)
		if err != nil {
			return nil, fmt.Errorf("invalid class C threshold %q: %w", options.ThresholdClassC, err)
		}
		cfg.ThresholdClassC = hits
	}
	if options.LargerNetPct != "" {
		pct, err := strconv.ParseFloat(options.LargerNetPct, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid larger net percentage %q: %w", options.LargerNetPct, err)
		}
		cfg.LargerNetCoveragePercentage = pct
	}
	if options.Concurrency != "" {
		limit, err := strconv.Atoi(options.Concurrency)
		if err != nil {
			return nil, fmt.Errorf("invalid concurrency %q: %w", options.Concurrency, err)
		}
		cfg.ConcurrencyLimit = limit
	}
	cfg.Exclude = append(cfg.Exclude, options.Exclude...)
	if options.JSONField != "" {
		cfg.JSONField = options.JSONField
	}
	if options.Format != "" {
		cfg.Format = options.Format
	}
	if options.TableName != "" {
		cfg.TableName = options.TableName
	}
	if options.Zone != "" {
		cfg.Zone = options.Zone
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
