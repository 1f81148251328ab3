// Package resolverpool implements ResolverPool: an ordered collection of
// resolver endpoints, health-checked once per run, modeled on the
// nameserver bookkeeping in github.com/caffix/resolve's resolvers.go
// (AddResolvers/initializeResolver), simplified to the single-exchange
// DnsProbe used by this engine instead of the teacher's async xchg manager.
package resolverpool

import (
	"context"
	"sync"
	"time"

	"github.com/go-esd/esd/internal/dnsclient"
	"github.com/go-esd/esd/internal/model"
)

// HealthCheckName is queried against each configured resolver to determine
// reachability before the run begins (§4.8 step 1).
const HealthCheckName = "www.example.com"

// Pool is a health-checked collection of DNS resolvers.
type Pool struct {
	Probes []*dnsclient.Probe
}

// New health-checks each of the given nameserver addresses and returns a
// Pool containing only the ones that answered. Unreachable resolvers are
// dropped, per the ResolverPool invariant in §3. Every probe, healthy or
// not, is bound to maxQPS before it is ever queried (falling back to
// dnsclient.DefaultMaxQPS when maxQPS <= 0), so the rate governor is in
// effect from the health check onward, not just in theory.
func New(ctx context.Context, nameservers []string, timeout time.Duration, maxQPS int, stats *model.RunStats) *Pool {
	pool := &Pool{}
	if timeout <= 0 {
		timeout = dnsclient.DefaultTimeout
	}
	if maxQPS <= 0 {
		maxQPS = dnsclient.DefaultMaxQPS
	}

	type result struct {
		probe *dnsclient.Probe
		alive bool
	}

	results := make([]result, len(nameservers))
	var wg sync.WaitGroup
	for i, ns := range nameservers {
		wg.Add(1)
		go func(i int, ns string) {
			defer wg.Done()
			probe := dnsclient.New(ns, timeout, stats)
			probe.SetMaxQPS(maxQPS)
			results[i] = result{probe: probe, alive: probe.HealthCheck(ctx, HealthCheckName)}
		}(i, ns)
	}
	wg.Wait()

	for _, r := range results {
		if r.alive {
			pool.Probes = append(pool.Probes, r.probe)
		}
	}
	return pool
}

// Len returns the number of healthy resolvers in the pool.
func (p *Pool) Len() int {
	return len(p.Probes)
}

// Primary returns the first healthy resolver, or nil if the pool is empty.
func (p *Pool) Primary() *dnsclient.Probe {
	if len(p.Probes) == 0 {
		return nil
	}
	return p.Probes[0]
}
