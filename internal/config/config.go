// Package config handles the TOML configuration for idlelb.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/younsl/idlelb/internal/models"
)

const (
	DefaultDays                = 45
	DefaultSingleStageWorkers  = 20
	DefaultMultiStageWorkers   = 10
	DefaultRoleSessionDuration = time.Hour
	DefaultOutputDir           = "outputs"
)

// Config is the root configuration structure.
type Config struct {
	Name            string        `toml:"name"`
	RunOptionStr    string        `toml:"run_option"`
	Days            int           `toml:"days"`
	FormatStr       string        `toml:"format"`
	KindStrs        []string      `toml:"kinds"`
	StrictVPCFilter *bool         `toml:"strict_vpc_filter"`
	OutputDir       string        `toml:"output_dir"`
	Scan            ScanConfig    `toml:"scan"`
	Report          ReportConfig  `toml:"report"`
	Metrics         MetricsConfig `toml:"metrics"`
	Log             LogConfig     `toml:"log"`
	AWS             AWSConfig     `toml:"aws"`

	RunOption models.RunOption         `toml:"-"`
	Format    models.ListFormat         `toml:"-"`
	Kinds     []models.LoadBalancerKind `toml:"-"`
}

// ScanConfig holds concurrency settings.
type ScanConfig struct {
	SingleStageWorkers   int           `toml:"single_stage_workers"`
	MultiStageWorkers    int           `toml:"multi_stage_workers"`
	MaxConcurrentDeletes int           `toml:"max_concurrent_deletes"`
	RoleSessionDurStr    string        `toml:"role_session_duration"`
	RoleSessionDuration  time.Duration `toml:"-"`
}

// ReportConfig holds report destinations.
type ReportConfig struct {
	S3Bucket     string `toml:"s3_bucket"`
	S3Prefix     string `toml:"s3_prefix"`
	S3Region     string `toml:"s3_region"`
	EstimateCost bool   `toml:"estimate_cost"`
}

// MetricsConfig holds Prometheus textfile settings.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AWSConfig lists the accounts to scan.
type AWSConfig struct {
	Accounts []models.AccountConfig `toml:"accounts"`
}

// Strict reports whether the VPC filter drops non-matching records.
func (c *Config) Strict() bool {
	return c.StrictVPCFilter == nil || *c.StrictVPCFilter
}

// Load reads and parses a TOML config file. Every failure is a config error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewConfigError(fmt.Errorf("read config file: %w", err))
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, models.NewConfigError(fmt.Errorf("parse config: %w", err))
	}

	applyDefaults(cfg)

	if err := cfg.resolve(); err != nil {
		return nil, models.NewConfigError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, models.NewConfigError(err)
	}

	return cfg, nil
}

// Default returns the configuration used in account-less mode.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	// defaults always resolve
	_ = cfg.resolve()
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = "idlelb"
	}
	if cfg.RunOptionStr == "" {
		cfg.RunOptionStr = string(models.RunList)
	}
	if cfg.Days == 0 {
		cfg.Days = DefaultDays
	}
	if cfg.FormatStr == "" {
		cfg.FormatStr = string(models.FormatTabled)
		if len(cfg.AWS.Accounts) > 0 {
			cfg.FormatStr = string(models.FormatFile)
		}
	}
	if len(cfg.KindStrs) == 0 {
		for _, k := range models.AllKinds {
			cfg.KindStrs = append(cfg.KindStrs, string(k))
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Scan.SingleStageWorkers == 0 {
		cfg.Scan.SingleStageWorkers = DefaultSingleStageWorkers
	}
	if cfg.Scan.MultiStageWorkers == 0 {
		cfg.Scan.MultiStageWorkers = DefaultMultiStageWorkers
	}
	if cfg.Scan.RoleSessionDurStr == "" {
		cfg.Scan.RoleSessionDurStr = DefaultRoleSessionDuration.String()
	}
	if cfg.Report.S3Region == "" {
		cfg.Report.S3Region = "us-east-1"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// resolve parses the string-typed fields into their typed counterparts.
func (c *Config) resolve() error {
	opt, err := models.ParseRunOption(c.RunOptionStr)
	if err != nil {
		return err
	}
	c.RunOption = opt

	format, err := models.ParseListFormat(c.FormatStr)
	if err != nil {
		return err
	}
	c.Format = format

	kinds, err := ParseKinds(c.KindStrs)
	if err != nil {
		return err
	}
	c.Kinds = kinds

	d, err := time.ParseDuration(c.Scan.RoleSessionDurStr)
	if err != nil {
		return fmt.Errorf("parse role_session_duration %q: %w", c.Scan.RoleSessionDurStr, err)
	}
	c.Scan.RoleSessionDuration = d

	return nil
}

// ParseKinds converts kind names, dropping duplicates.
func ParseKinds(names []string) ([]models.LoadBalancerKind, error) {
	seen := make(map[models.LoadBalancerKind]bool)
	var kinds []models.LoadBalancerKind
	for _, name := range names {
		k, err := models.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Days < 1 {
		errs = append(errs, fmt.Errorf("days must be at least 1 (got %d)", c.Days))
	}
	if c.Scan.SingleStageWorkers < 1 || c.Scan.MultiStageWorkers < 1 {
		errs = append(errs, fmt.Errorf("scan: worker counts must be positive"))
	}
	if c.Scan.MaxConcurrentDeletes < 0 {
		errs = append(errs, fmt.Errorf("scan: max_concurrent_deletes must not be negative"))
	}
	// STS accepts 15 minutes up to 12 hours
	if c.Scan.RoleSessionDuration < 15*time.Minute || c.Scan.RoleSessionDuration > 12*time.Hour {
		errs = append(errs, fmt.Errorf("scan: role_session_duration must be between 15m and 12h (got %s)", c.Scan.RoleSessionDuration))
	}
	for i, acct := range c.AWS.Accounts {
		if acct.RoleARN == "" {
			errs = append(errs, fmt.Errorf("aws.accounts[%d]: iam_role is required", i))
		}
		if len(acct.Regions) == 0 {
			errs = append(errs, fmt.Errorf("aws.accounts[%d]: at least one region required", i))
		}
	}
	return errors.Join(errs...)
}

// Workers returns the governor capacity for a load balancer kind.
func (c *Config) Workers(kind models.LoadBalancerKind) int {
	if kind == models.MultiStage {
		return c.Scan.MultiStageWorkers
	}
	return c.Scan.SingleStageWorkers
}
