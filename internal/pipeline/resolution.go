package pipeline

import (
	"context"

	"github.com/go-esd/esd/internal/dnsclient"
	"github.com/go-esd/esd/internal/model"
	"github.com/go-esd/esd/internal/scheduler"
)

// DNSWindow is the default BoundedScheduler concurrency window for direct
// resolution (§4.7: "typical W values: 1000 for DNS").
const DNSWindow = 1000

// ResolutionOutcome classifies what the ResolutionPipeline did with a
// single candidate, for callers that want visibility beyond the AdmitSet
// (logging, tests).
type ResolutionOutcome int

const (
	// OutcomeDiscarded means the name did not resolve.
	OutcomeDiscarded ResolutionOutcome = iota
	// OutcomeAdmitted means the name resolved to a non-wildcard ip-set and
	// was admitted directly.
	OutcomeAdmitted
	// OutcomeWildcardHit means the name resolved but matched the wildcard
	// ip-set; it is forwarded to RscPipeline when RSC is enabled.
	OutcomeWildcardHit
)

// ResolutionResult is the per-candidate outcome of the ResolutionPipeline.
type ResolutionResult struct {
	FQDN    string
	IPs     []string
	Outcome ResolutionOutcome
}

// Resolve drives DnsProbe over every candidate (§4.4): resolves its fqdn,
// discards absences, admits non-wildcard hits to admit directly, and
// reports wildcard hits separately so the caller can forward them to
// RscPipeline when RSC is enabled. window overrides DNSWindow when > 0.
// onAdmit, if non-nil, is called synchronously for every name admitted
// directly (not wildcard hits), so a caller can observe admissions as
// they happen instead of waiting for Resolve to return (§5).
func Resolve(ctx context.Context, probe *dnsclient.Probe, apex string, candidates []model.Candidate, wc *model.WildcardState, admit *model.AdmitSet, window int, onAdmit func(fqdn string, ips []string)) []ResolutionResult {
	if probe == nil || len(candidates) == 0 {
		return nil
	}
	if window <= 0 {
		window = DNSWindow
	}

	tasks := make([]scheduler.Task, len(candidates))
	fqdns := make([]string, len(candidates))
	for i, c := range candidates {
		fqdn := c.FQDN(apex)
		fqdns[i] = fqdn
		tasks[i] = func(ctx context.Context) (interface{}, error) {
			return probe.QueryA(ctx, fqdn), nil
		}
	}

	s := scheduler.New(window)
	results := make([]ResolutionResult, len(candidates))
	for r := range s.Run(ctx, tasks) {
		fqdn := fqdns[r.Index]
		if r.Err != nil {
			results[r.Index] = ResolutionResult{FQDN: fqdn, Outcome: OutcomeDiscarded}
			continue
		}
		ips, _ := r.Value.([]string)
		result := classify(fqdn, ips, wc, admit)
		results[r.Index] = result
		if result.Outcome == OutcomeAdmitted && onAdmit != nil {
			onAdmit(result.FQDN, result.IPs)
		}
	}
	return results
}

func classify(fqdn string, ips []string, wc *model.WildcardState, admit *model.AdmitSet) ResolutionResult {
	if len(ips) == 0 {
		return ResolutionResult{FQDN: fqdn, Outcome: OutcomeDiscarded}
	}
	if wc != nil && wc.IsWildcardHit(ips) {
		return ResolutionResult{FQDN: fqdn, IPs: ips, Outcome: OutcomeWildcardHit}
	}
	if admit != nil {
		admit.Admit(fqdn, ips)
	}
	return ResolutionResult{FQDN: fqdn, IPs: ips, Outcome: OutcomeAdmitted}
}
