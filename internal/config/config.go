// Package config loads run configuration: CLI flags merged over viper
// defaults and an optional config file, adapted from
// nischalbijukchhe-ultimate-recon-ninja's internal/config.Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting recognized by the CLI (§6) plus the
// BoundedScheduler window overrides and output directory added in the
// ambient-stack expansion.
type Config struct {
	Domains      []string `mapstructure:"domains"`
	File         string   `mapstructure:"file"`
	Filters      []string `mapstructure:"filters"`
	SkipRSC      bool     `mapstructure:"skip_rsc"`
	SplitK       int      `mapstructure:"split_k"`
	SplitN       int      `mapstructure:"split_n"`
	Proxy        string   `mapstructure:"proxy"`
	MultiResolve bool     `mapstructure:"multi_resolve"`
	OutputDir    string   `mapstructure:"output_dir"`
	DNSWorkers   int      `mapstructure:"dns_workers"`
	HTTPWorkers  int      `mapstructure:"http_workers"`
	DNSMaxQPS    int      `mapstructure:"dns_max_qps"`
	Resolvers    []string `mapstructure:"resolvers"`
	Dictionary   string   `mapstructure:"dictionary"`
	Debug        bool     `mapstructure:"debug"`
}

// DebugEnvVar is the environment variable that enables debug mode when set
// to any value (§6: "esd=<any> enables debug mode").
const DebugEnvVar = "esd"

// Load merges defaults, an optional --config file, CLI flags, and the
// debug environment variable into a Config.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile, _ := flags.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	var cfg Config
	cfg.Domains = splitCSV(v.GetString("domain"))
	cfg.File = v.GetString("file")
	cfg.Filters = splitCSV(v.GetString("filter"))
	cfg.SkipRSC = v.GetBool("skip-rsc")
	cfg.Proxy = v.GetString("proxy")
	cfg.MultiResolve = v.GetBool("multi-resolve")
	cfg.OutputDir = v.GetString("output-dir")
	cfg.DNSWorkers = v.GetInt("dns-workers")
	cfg.HTTPWorkers = v.GetInt("http-workers")
	cfg.DNSMaxQPS = v.GetInt("max-qps")
	cfg.Resolvers = v.GetStringSlice("resolvers")
	cfg.Dictionary = v.GetString("dictionary")

	if _, ok := os.LookupEnv(DebugEnvVar); ok {
		cfg.Debug = true
	}

	k, n, err := parseSplit(v.GetString("split"))
	if err != nil {
		return nil, err
	}
	cfg.SplitK, cfg.SplitN = k, n

	if len(cfg.Domains) == 0 && cfg.File == "" {
		return nil, fmt.Errorf("config: one of --domain or --file is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output-dir", "tmp")
	v.SetDefault("dns-workers", 1000)
	v.SetDefault("http-workers", 100)
	v.SetDefault("max-qps", 200)
	v.SetDefault("split", "1/1")
	v.SetDefault("dictionary", "")
	v.SetDefault("resolvers", []string{"8.8.8.8", "1.1.1.1"})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseSplit validates and parses the "-S, --split" K/N shard spec (§6).
// A malformed spec is a ConfigurationError: fatal before the engine
// starts (§7, §9).
func parseSplit(spec string) (k, n int, err error) {
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("config: malformed split %q, want K/N", spec)
	}
	k, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("config: malformed split %q: %w", spec, err)
	}
	n, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("config: malformed split %q: %w", spec, err)
	}
	if n < 1 || k < 1 || k > n {
		return 0, 0, fmt.Errorf("config: invalid split %d/%d", k, n)
	}
	return k, n, nil
}
