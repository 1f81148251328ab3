// Package wildcard implements the WildcardOracle: detection of wildcard
// DNS zones and capture of the 2nd/3rd-level baseline HTML bodies used by
// the RSC fallback. The unlikely-name synthesis is adapted from
// github.com/caffix/resolve's wildcards.go (UnlikelyName), generalized
// from single-resolver wildcard-type caching to the multi-resolver
// agreement check this spec calls for (§4.3, §9 "random-resolve zones").
package wildcard

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-esd/esd/internal/dnsclient"
	"github.com/go-esd/esd/internal/model"
	"github.com/go-esd/esd/internal/normalize"
)

const ldhChars = "abcdefghijklmnopqrstuvwxyz"

// RandomLabel returns a fresh, unlikely-to-exist DNS label.
func RandomLabel() string {
	const n = 12
	b := make([]byte, n)
	for i := range b {
		b[i] = ldhChars[rand.Intn(len(ldhChars))]
	}
	return "esd-" + string(b) + fmt.Sprintf("%04d", rand.Intn(10000))
}

// Oracle initializes WildcardState for an apex per §4.3.
type Oracle struct {
	HTTPClient *http.Client
	HTTPDelay  time.Duration
}

// NewOracle returns an Oracle with a default HTTP client. HTTPDelay bounds
// the baseline body fetch (defaults to 10s, matching the original source's
// requests.get(..., timeout=10)).
func NewOracle(httpClient *http.Client) *Oracle {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Oracle{HTTPClient: httpClient, HTTPDelay: 10 * time.Second}
}

// Initialize runs the §4.3 sequence: query every healthy resolver for a
// synthesized sentinel name, compare answers, and — if the zone is a
// wildcard and RSC is enabled — fetch the 2nd/3rd-level baseline bodies.
func (o *Oracle) Initialize(ctx context.Context, apex string, probes []*dnsclient.Probe, rscEnabled bool) *model.WildcardState {
	state := &model.WildcardState{}
	if len(probes) == 0 {
		return state
	}

	label2 := RandomLabel()
	sentinel2 := label2 + "." + apex
	label3 := RandomLabel() + "." + RandomLabel()
	sentinel3 := label3 + "." + apex

	type answer struct {
		ips []string
	}
	answers := make([]answer, len(probes))
	for i, probe := range probes {
		ips := probe.QueryA(ctx, sentinel2)
		answers[i] = answer{ips: ips}
	}

	var firstNonEmpty []string
	disagreement := false
	for _, a := range answers {
		if len(a.ips) == 0 {
			continue
		}
		if firstNonEmpty == nil {
			firstNonEmpty = a.ips
			continue
		}
		if !model.EqualIPSets(a.ips, firstNonEmpty) {
			disagreement = true
		}
	}

	switch {
	case disagreement:
		// Different resolvers disagree about a name that cannot exist:
		// direct resolution is useless, fall back to RSC unconditionally.
		state.IsWildcard = true
		state.RandomResolve = true
	case firstNonEmpty != nil:
		state.IsWildcard = true
		state.WildcardIPs = firstNonEmpty
	default:
		state.IsWildcard = false
	}

	if state.IsWildcard && rscEnabled {
		o.captureBaselines(ctx, sentinel2, sentinel3, state)
	}
	return state
}

func (o *Oracle) captureBaselines(ctx context.Context, sentinel2, sentinel3 string, state *model.WildcardState) {
	html2, ok2 := o.fetch(ctx, sentinel2)
	html3, ok3 := o.fetch(ctx, sentinel3)

	if !ok2 && !ok3 {
		// BaselineUnavailable (§7): disable RSC for this run.
		state.RSCDisabled = true
		return
	}

	state.BaselineHTML2 = normalize.Body(html2)
	state.BaselineLen2 = len(state.BaselineHTML2)
	state.BaselineHTML3 = normalize.Body(html3)
	state.BaselineLen3 = len(state.BaselineHTML3)
}

func (o *Oracle) fetch(ctx context.Context, host string) (string, bool) {
	if o.HTTPDelay > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.HTTPDelay)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+host+"/", nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", "esd")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	return string(buf), true
}

// DetectFromAnswers applies the same agreement rule as Initialize to a set
// of resolver answers and reports whether the zone is a wildcard, whether
// it is random-resolve, and the sorted wildcard ip-set (nil when the
// answers disagree or are all empty). Initialize does not call it.
func DetectFromAnswers(answers [][]string) (wildcard bool, randomResolve bool, ips []string) {
	var first []string
	for _, a := range answers {
		if len(a) == 0 {
			continue
		}
		sorted := model.SortedIPs(a)
		if first == nil {
			first = sorted
			continue
		}
		if !model.EqualIPSets(sorted, first) {
			return true, true, nil
		}
	}
	if first != nil {
		return true, false, first
	}
	return false, false, nil
}
