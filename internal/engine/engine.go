// Package engine implements the Engine: phase orchestration, resolver
// selection, and result aggregation for a single apex, per §4.8.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/idna"
	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"

	"github.com/go-esd/esd/internal/candidates"
	"github.com/go-esd/esd/internal/dnsclient"
	"github.com/go-esd/esd/internal/heartbeat"
	"github.com/go-esd/esd/internal/model"
	"github.com/go-esd/esd/internal/pipeline"
	"github.com/go-esd/esd/internal/resolverpool"
	"github.com/go-esd/esd/internal/wildcard"
)

// Options configures a single apex enumeration run.
type Options struct {
	Apex         string
	Resolvers    []string
	Dictionary   []string
	SkipRSC      bool
	MultiResolve bool
	Filters      []string
	ProxyAddr    string
	DNSWindow    int
	HTTPWindow   int
	DNSMaxQPS    int
	Logger       *zap.Logger
}

// Result is the outcome of a single apex run: the admitted names and the
// wildcard state observed, for the output collaborator and CLI summary.
type Result struct {
	Apex     string
	Admitted map[string][]string
	Wildcard *model.WildcardState
	RunStats *model.RunStats
}

// Run executes the §4.8 phase sequence for a single apex.
func Run(ctx context.Context, opts Options) (*Result, error) {
	apex, err := normalizeApex(opts.Apex)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := model.NewRunStats()

	// Step 1: health-check each configured resolver, each bound to a
	// per-resolver max QPS so resolution never overruns a nameserver.
	pool := resolverpool.New(ctx, opts.Resolvers, dnsclient.DefaultTimeout, opts.DNSMaxQPS, stats)
	if pool.Len() == 0 {
		return nil, fmt.Errorf("engine: no healthy resolvers for %s", apex)
	}
	logger.Info("resolvers healthy",
		zap.String("apex", apex),
		zap.String("run_id", stats.ID.String()),
		zap.Int("count", pool.Len()),
	)

	admit := model.NewAdmitSet()
	queue := model.NewDiscoveryQueue()

	observer := heartbeat.NewObserver(logger, 5*time.Second)
	observer.Start()
	defer observer.Stop()

	// Step 2: WildcardOracle initialization.
	httpClient, err := httpClientFor(opts.ProxyAddr)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	oracle := wildcard.NewOracle(httpClient)
	wc := oracle.Initialize(ctx, apex, pool.Probes, !opts.SkipRSC)

	// Step 3: direct resolution over candidate sources, unless the zone
	// is random-resolve (direct lookups are meaningless there).
	candSet := buildCandidates(ctx, apex, pool, opts)
	stats.DictionaryCount = len(opts.Dictionary)

	if !wc.RandomResolve {
		pipeline.Resolve(ctx, pool.Primary(), apex, candSet.Slice(), wc, admit, opts.DNSWindow, observer.Push)
	}

	// Step 4: RSC over the union of candidates not yet admitted, then
	// drain DiscoveryQueue to fixpoint.
	if wc.IsWildcard && !opts.SkipRSC && !wc.RSCDisabled {
		rsc := pipeline.New(apex, wc, admit, queue, opts.Filters, stats)
		rsc.Client = httpClient
		rsc.OnAdmit = observer.Push

		var unresolved []string
		for _, c := range candSet.Slice() {
			fqdn := c.FQDN(apex)
			if !admit.Has(fqdn) {
				unresolved = append(unresolved, fqdn)
			}
		}
		rsc.Run(ctx, unresolved)
		pipeline.DrainToFixpoint(ctx, rsc, queue)
	}

	snapshot := admit.Snapshot()
	stats.Admitted = len(snapshot)

	return &Result{Apex: apex, Admitted: snapshot, Wildcard: wc, RunStats: stats}, nil
}

// buildCandidates runs the configured CandidateSources and merges their
// output into a single deduplicated CandidateSet (§4.2, §4.8 step 3).
func buildCandidates(ctx context.Context, apex string, pool *resolverpool.Pool, opts Options) *model.CandidateSet {
	set := model.NewCandidateSet()
	for _, label := range opts.Dictionary {
		set.Add(model.Candidate(label))
	}

	primary := pool.Primary()
	for _, name := range candidates.ZoneTransfer(ctx, apex, primary) {
		set.Add(model.Candidate(name))
	}
	for _, name := range candidates.CASubdomains(ctx, apex, primary) {
		set.Add(model.Candidate(name))
	}

	if opts.MultiResolve {
		seeds := make([]string, 0, set.Len())
		for _, c := range set.Slice() {
			seeds = append(seeds, c.FQDN(apex))
		}
		for _, name := range candidates.MultiRecordMine(ctx, primary, seeds) {
			set.Add(model.Candidate(name))
		}
	}
	return set
}

// normalizeApex IDNA-encodes apex and verifies it resolves to a usable
// registrable domain via publicsuffix, rejecting malformed input before
// the engine starts (§7 ConfigurationError).
func normalizeApex(apex string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(apex)
	if err != nil {
		return "", fmt.Errorf("invalid apex %q: %w", apex, err)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(ascii); err != nil {
		return "", fmt.Errorf("apex %q is not a registrable domain: %w", apex, err)
	}
	return ascii, nil
}

// httpClientFor returns an *http.Client that dials through a SOCKS5
// proxy when proxyAddr is set, otherwise the default transport (§6:
// "-p, --proxy SOCKS5 endpoint, used for outbound HTTP only").
func httpClientFor(proxyAddr string) (*http.Client, error) {
	if proxyAddr == "" {
		return &http.Client{Timeout: pipeline.HTTPTimeout}, nil
	}

	u, err := url.Parse("socks5://" + proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address %q: %w", proxyAddr, err)
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("building SOCKS5 dialer: %w", err)
	}
	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("proxy dialer does not support context dialing")
	}

	transport := &http.Transport{DialContext: contextDialer.DialContext}
	return &http.Client{Timeout: pipeline.HTTPTimeout, Transport: transport}, nil
}
