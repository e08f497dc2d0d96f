package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/briandowns/spinner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/younsl/idlelb/internal/config"
	"github.com/younsl/idlelb/internal/logging"
	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
	"github.com/younsl/idlelb/internal/runner"
	"github.com/younsl/idlelb/internal/version"
	awsclient "github.com/younsl/idlelb/pkg/aws"
	"github.com/younsl/idlelb/pkg/formatter"
	"github.com/younsl/idlelb/pkg/pricing"
)

var (
	configPath      string
	regions         []string
	vpcIDs          []string
	days            int
	runOption       string
	format          string
	kinds           []string
	strictVPCFilter bool
	estimateCost    bool
	logLevel        string
	showVersion     bool
)

// startResourceSpinner creates and starts a spinner on stderr so stdout stays clean for CSV
func startResourceSpinner(cfg *config.Config) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Analyzing load balancers (%s, last %d days) ...", cfg.RunOption, cfg.Days)
	s.Start()
	return s
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "idlelb",
		Short: "CLI tool to find and remove inactive AWS load balancers",
		Long: `idlelb inventories classic, application and network load balancers
across regions and accounts, classifies each one by its CloudWatch
HealthyHostCount, and lists or deletes the inactive ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.Flags().StringSliceVarP(&regions, "regions", "r", nil,
		fmt.Sprintf("AWS regions to scan without a config file (comma separated, default: current region or %s)", awsclient.FallbackRegion))
	rootCmd.Flags().StringSliceVar(&vpcIDs, "vpc-ids", nil, "Only consider load balancers in these VPCs (comma separated)")
	rootCmd.Flags().IntVarP(&days, "days", "d", config.DefaultDays, "Lookback window in days")
	rootCmd.Flags().StringVarP(&runOption, "option", "o", string(models.RunList), "Run option: list or delete")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: tabled, csv or file")
	rootCmd.Flags().StringSliceVarP(&kinds, "kinds", "k", nil, "Load balancer kinds to scan: elb, elbv2 (default: both)")
	rootCmd.Flags().BoolVar(&strictVPCFilter, "strict-vpc-filter", true, "Drop load balancers outside the VPC filter")
	rootCmd.Flags().BoolVar(&estimateCost, "estimate-cost", false, "Estimate the monthly cost of inactive load balancers")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("idlelb failed")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Println(version.Get())
		return nil
	}
	// console logging until the config picks the real level and format
	_ = logging.Setup("info", "console")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return models.NewConfigError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return models.NewConfigError(fmt.Errorf("failed to load AWS config: %w", err))
	}
	base.Region = awsclient.ResolveRegion(ctx, base)
	if len(regions) == 0 {
		regions = []string{base.Region}
	}

	rec := metrics.New()
	opts := []runner.Option{
		runner.WithMetrics(rec),
		runner.WithAccountless(regions, vpcIDs),
	}
	if cfg.Report.EstimateCost {
		opts = append(opts, runner.WithEstimator(pricing.NewEstimator(pricing.NewClient(base))))
	}
	if cfg.Report.S3Bucket != "" {
		s3cfg := base.Copy()
		s3cfg.Region = cfg.Report.S3Region
		opts = append(opts, runner.WithUploader(awsclient.NewReportUploader(s3cfg, cfg.Report.S3Bucket, cfg.Report.S3Prefix)))
	}

	r := runner.New(cfg, runner.NewAWSProvider(base, cfg.Scan.RoleSessionDuration, rec), opts...)

	scanStartTime := time.Now()
	s := startResourceSpinner(cfg)
	results, execErr := r.Execute(ctx)
	scanDuration := time.Since(scanStartTime)

	found := 0
	for _, res := range results {
		found += len(res.Records)
	}
	s.FinalMSG = fmt.Sprintf("✓ [%d inactive load balancers] analyzed %d account(s) - Completed in %.2f seconds\n",
		found, len(results), scanDuration.Seconds())
	s.Stop()

	reportErr := r.Report(ctx, results)
	formatter.PrintTimestamp(os.Stderr, scanStartTime, scanDuration)

	if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn().Err(err).Msg("could not write metrics")
	}

	return errors.Join(execErr, reportErr)
}

// loadConfig reads the config file, or builds the flag-only config, then applies explicit flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("option") || configPath == "" {
		opt, err := models.ParseRunOption(runOption)
		if err != nil {
			return nil, models.NewConfigError(err)
		}
		cfg.RunOption = opt
	}
	if flags.Changed("format") {
		f, err := models.ParseListFormat(format)
		if err != nil {
			return nil, models.NewConfigError(err)
		}
		cfg.Format = f
	}
	if flags.Changed("kinds") {
		k, err := config.ParseKinds(kinds)
		if err != nil {
			return nil, models.NewConfigError(err)
		}
		cfg.Kinds = k
	}
	if flags.Changed("days") {
		cfg.Days = days
	}
	if flags.Changed("strict-vpc-filter") {
		cfg.StrictVPCFilter = &strictVPCFilter
	}
	if flags.Changed("estimate-cost") {
		cfg.Report.EstimateCost = estimateCost
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, models.NewConfigError(err)
	}
	return cfg, nil
}
