package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"project/subnet-aggregator/aggregate"
	"project/subnet-aggregator/formatter"
)

// Defaults applied to missing values.
const (
	DefaultConcurrencyLimit = 4
	DefaultFormat           = formatter.FormatPlain
	DefaultTableName        = "attackers"
	DefaultZone             = "bl.local"
)

// Config holds the application configuration loaded from a YAML file.
type Config struct {
	// ThresholdClassC is the number of distinct addresses needed to select a /24.
	ThresholdClassC int `yaml:"thresholdClassC"`
	// LargerNetCoveragePercentage is the fraction of a broader network that
	// selected /24 networks must cover for it to be selected.
	LargerNetCoveragePercentage float64 `yaml:"largerNetCoveragePercentage"`
	// ConcurrencyLimit for inputs aggregated separately.
	ConcurrencyLimit int `yaml:"concurrencyLimit"`
	// Exclude lists ranges (CIDR or address) whose addresses are ignored.
	Exclude []string `yaml:"exclude"`
	// JSONField is the gjson path of the address in JSON-lines input.
	JSONField string `yaml:"jsonField"`
	// Format selects the output rendering: plain, pf or dnsbl.
	Format string `yaml:"format"`
	// TableName is the pf table name.
	TableName string `yaml:"tableName"`
	// Zone is the DNSBL zone origin.
	Zone string `yaml:"zone"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads and unmarshals the configuration from the specified YAML file path.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", filePath, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return &cfg, nil
}

// Zero values are treated as missing.
func (c *Config) applyDefaults() {
	if c.ThresholdClassC == 0 {
		c.ThresholdClassC = aggregate.DefaultThresholdClassC
	}
	if c.LargerNetCoveragePercentage == 0 {
		c.LargerNetCoveragePercentage = aggregate.DefaultLargerNetCoveragePercentage
	}
	if c.ConcurrencyLimit == 0 {
		c.ConcurrencyLimit = DefaultConcurrencyLimit
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.Zone == "" {
		c.Zone = DefaultZone
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.LargerNetCoveragePercentage < 0 {
		errs = append(errs, fmt.Errorf("largerNetCoveragePercentage must not be negative, got %v", c.LargerNetCoveragePercentage))
	}
	if c.ConcurrencyLimit < 1 {
		errs = append(errs, fmt.Errorf("concurrencyLimit must be at least 1, got %d", c.ConcurrencyLimit))
	}
	switch c.Format {
	case formatter.FormatPlain, formatter.FormatPF, formatter.FormatDNSBL:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	return errors.Join(errs...)
}

// Params returns the aggregation thresholds.
func (c *Config) Params() aggregate.Params {
	return aggregate.Params{
		ThresholdClassC:             c.ThresholdClassC,
		LargerNetCoveragePercentage: c.LargerNetCoveragePercentage,
	}
}
