// Command esd is the CLI entrypoint: concurrent subdomain enumeration
// over one or more apex domains, wired per §6. Adapted from
// nischalbijukchhe-ultimate-recon-ninja's cmd/usr/main.go cobra layout.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-esd/esd/internal/banner"
	"github.com/go-esd/esd/internal/candidates"
	"github.com/go-esd/esd/internal/config"
	"github.com/go-esd/esd/internal/engine"
	"github.com/go-esd/esd/internal/logging"
	"github.com/go-esd/esd/internal/model"
	"github.com/go-esd/esd/internal/output"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "esd",
	Short: "Concurrent subdomain enumeration with wildcard-aware validation",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("domain", "d", "", "comma-separated apex names")
	flags.StringP("file", "f", "", "newline-delimited apex-name file")
	flags.StringP("filter", "F", "", "comma-separated response-filter substrings")
	flags.BoolP("skip-rsc", "s", false, "disable the RSC pipeline")
	flags.StringP("split", "S", "1/1", "shard spec K/N (1-indexed, K<=N)")
	flags.StringP("proxy", "p", "", "SOCKS5 endpoint for outbound HTTP")
	flags.BoolP("multi-resolve", "m", false, "enable multi-record mining")
	flags.String("config", "", "config file path")
	flags.String("output-dir", "tmp", "directory for .esd output files")
	flags.Int("dns-workers", 1000, "BoundedScheduler window for DNS resolution")
	flags.Int("http-workers", 100, "BoundedScheduler window for RSC HTTP fetches")
	flags.Int("max-qps", 200, "maximum queries per second per resolver")
	flags.StringSlice("resolvers", []string{"8.8.8.8", "1.1.1.1"}, "DNS resolver addresses")
	flags.String("dictionary", "", "path to the dictionary file")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		// ConfigurationError: fatal before the engine starts (§7).
		return err
	}

	logger := logging.New(cfg.Debug)
	defer logger.Sync()

	banner.Print(os.Stdout, version)

	apexes, err := collectApexes(cfg)
	if err != nil {
		return err
	}

	dict, err := loadDictionary(cfg)
	if err != nil {
		return err
	}

	for _, apex := range apexes {
		if err := runApex(cmd.Context(), cfg, logger, apex, dict); err != nil {
			logger.Error("apex run failed", zap.String("apex", apex), zap.Error(err))
			continue
		}
	}
	return nil
}

func runApex(ctx context.Context, cfg *config.Config, logger *zap.Logger, apex string, dict []string) error {
	result, err := engine.Run(ctx, engine.Options{
		Apex:         apex,
		Resolvers:    cfg.Resolvers,
		Dictionary:   dict,
		SkipRSC:      cfg.SkipRSC,
		MultiResolve: cfg.MultiResolve,
		Filters:      cfg.Filters,
		ProxyAddr:    cfg.Proxy,
		DNSWindow:    cfg.DNSWorkers,
		HTTPWindow:   cfg.HTTPWorkers,
		DNSMaxQPS:    cfg.DNSMaxQPS,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	stable, timestamped, err := output.Write(cfg.OutputDir, apex, result.Admitted, time.Now())
	if err != nil {
		return err
	}
	logger.Info("run complete",
		zap.String("apex", apex),
		zap.Int("admitted", len(result.Admitted)),
		zap.String("stable_output", stable),
		zap.String("timestamped_output", timestamped),
	)
	return nil
}

// collectApexes merges -d/--domain and -f/--file into one apex list.
func collectApexes(cfg *config.Config) ([]string, error) {
	apexes := append([]string(nil), cfg.Domains...)
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("reading apex file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				apexes = append(apexes, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading apex file: %w", err)
		}
	}
	if len(apexes) == 0 {
		return nil, fmt.Errorf("no apex names provided via --domain or --file")
	}
	return apexes, nil
}

// loadDictionary reads and shards the configured dictionary, per §4.2/§6.
func loadDictionary(cfg *config.Config) ([]string, error) {
	if cfg.Dictionary == "" {
		return []string{model.Sentinel}, nil
	}
	f, err := os.Open(cfg.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	defer f.Close()

	dict, err := candidates.LoadDictionary(f)
	if err != nil {
		return nil, err
	}
	return candidates.Shard(dict, cfg.SplitK, cfg.SplitN)
}

func main() {
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
