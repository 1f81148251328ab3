package pipeline

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-esd/esd/internal/model"
	"github.com/go-esd/esd/internal/normalize"
)

// HTTPWindow is the default BoundedScheduler concurrency window for the
// RSC HTTP fetch phase (§4.7: "100 for HTTP").
const HTTPWindow = 100

// HTTPTimeout bounds a single RSC fetch attempt, including redirects.
const HTTPTimeout = 20 * time.Second

// HTTPMaxAttempts is the retry budget for timeouts during the RSC fetch,
// backed off exponentially (§4.5, §5).
const HTTPMaxAttempts = 3

// RatioThreshold is the admission boundary: ratio <= RatioThreshold admits (§4.5).
const RatioThreshold = 0.8

// userAgent is set on every RSC request so sink pages that key responses
// off client identity still compare consistently.
const userAgent = "esd/1.0"

// RscResult is the per-candidate outcome of RscPipeline.
type RscResult struct {
	FQDN     string
	Admitted bool
	Ratio    float64
	Err      error
}

// RscPipeline fetches http://<fqdn>/ for every candidate fqdn, scores its
// normalized body against the appropriate baseline, and admits candidates
// whose ratio falls at or below RatioThreshold. Self/apex redirects are
// ignored for discovery; redirects landing under apex but off the
// candidate, and embedded names under apex found in the body, are pushed
// to queue. filters is an optional list of substrings that reject a
// candidate outright when present in its normalized body (§4.5).
type RscPipeline struct {
	Client  *http.Client
	Apex    string
	State   *model.WildcardState
	Admit   *model.AdmitSet
	Queue   *model.DiscoveryQueue
	Filters []string
	Stats   *model.RunStats

	// OnAdmit, if non-nil, is called synchronously every time a candidate
	// is admitted, so a caller can observe admissions as they happen (§5)
	// instead of only after Run/DrainToFixpoint returns.
	OnAdmit func(fqdn string, ips []string)
}

// New returns an RscPipeline wired to apex, the wildcard baselines, and
// the shared AdmitSet/DiscoveryQueue for a run.
func New(apex string, state *model.WildcardState, admit *model.AdmitSet, queue *model.DiscoveryQueue, filters []string, stats *model.RunStats) *RscPipeline {
	return &RscPipeline{
		Client:  &http.Client{Timeout: HTTPTimeout},
		Apex:    apex,
		State:   state,
		Admit:   admit,
		Queue:   queue,
		Filters: filters,
		Stats:   stats,
	}
}

// Run processes every fqdn in fqdns, returning one RscResult each.
func (p *RscPipeline) Run(ctx context.Context, fqdns []string) []RscResult {
	out := make([]RscResult, 0, len(fqdns))
	for _, fqdn := range fqdns {
		out = append(out, p.runOne(ctx, fqdn))
	}
	return out
}

func (p *RscPipeline) runOne(ctx context.Context, fqdn string) RscResult {
	body, finalURL, err := p.fetchWithRetry(ctx, fqdn)
	if err != nil {
		return RscResult{FQDN: fqdn, Err: err}
	}

	normalized := normalize.Body(body)

	for _, f := range p.Filters {
		if f != "" && strings.Contains(normalized, f) {
			if p.Stats != nil {
				p.Stats.IncRSCRejected()
			}
			return RscResult{FQDN: fqdn}
		}
	}

	p.harvestRedirect(fqdn, finalURL)
	p.harvestBody(fqdn, normalized)

	baseline := p.State.BaselineHTML3
	baselineLen := p.State.BaselineLen3
	if !strings.Contains(strings.TrimSuffix(fqdn, "."+p.Apex), ".") {
		baseline = p.State.BaselineHTML2
		baselineLen = p.State.BaselineLen2
	}

	var ratio float64
	if len(normalized) == baselineLen {
		ratio = 1
	} else {
		ratio = QuickRatio(normalized, baseline)
	}

	if ratio <= RatioThreshold {
		if p.Admit != nil && p.Admit.Admit(fqdn, p.State.WildcardIPs) && p.OnAdmit != nil {
			p.OnAdmit(fqdn, p.State.WildcardIPs)
		}
		if p.Stats != nil {
			p.Stats.IncRSCAdmitted()
		}
		return RscResult{FQDN: fqdn, Admitted: true, Ratio: ratio}
	}
	if p.Stats != nil {
		p.Stats.IncRSCRejected()
	}
	return RscResult{FQDN: fqdn, Ratio: ratio}
}

// fetchWithRetry performs the GET, retrying timeouts up to HTTPMaxAttempts
// with exponential backoff (§4.5, §5); any other error ends the fetch at once.
func (p *RscPipeline) fetchWithRetry(ctx context.Context, fqdn string) (body string, finalURL string, err error) {
	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= HTTPMaxAttempts; attempt++ {
		body, finalURL, err = p.fetch(ctx, fqdn)
		if err == nil {
			return body, finalURL, nil
		}
		var netErr net.Error
		if attempt == HTTPMaxAttempts || !errors.As(err, &netErr) || !netErr.Timeout() {
			break
		}
		select {
		case <-ctx.Done():
			return "", "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", "", err
}

func (p *RscPipeline) fetch(ctx context.Context, fqdn string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+fqdn+"/", nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	finalURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return string(data), finalURL, nil
}

// harvestRedirect inspects the final redirect target's host: ignored if
// it is a self/apex redirect, enqueued in Queue if it is under Apex but
// distinct from the candidate, otherwise ignored as outside Apex (§4.5).
// Nothing is logged for an ignored redirect.
func (p *RscPipeline) harvestRedirect(fqdn, finalURL string) {
	if finalURL == "" || p.Queue == nil {
		return
	}
	u, err := url.Parse(finalURL)
	if err != nil {
		return
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return
	}
	if host == p.Apex || host == "www."+p.Apex || host == fqdn {
		return
	}
	if strings.HasSuffix(host, "."+p.Apex) {
		p.Queue.Enqueue(host)
	}
	// Outside apex: ignored for feedback.
}

var namePattern = regexp.MustCompile(`[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?)*`)

// harvestBody scans normalized for embedded names ending in ".Apex" and
// enqueues any that are not the candidate itself or a descendant of it
// (§4.5; original: rd[-len(sub_domain):] == sub_domain).
func (p *RscPipeline) harvestBody(fqdn, normalized string) {
	if p.Queue == nil {
		return
	}
	suffix := "." + p.Apex
	for _, tok := range namePattern.FindAllString(normalized, -1) {
		lower := strings.ToLower(tok)
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		if lower == fqdn || strings.HasSuffix(lower, "."+fqdn) {
			continue
		}
		p.Queue.Enqueue(lower)
	}
}
