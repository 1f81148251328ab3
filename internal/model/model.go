// Package model defines the data types shared across the enumeration
// engine: candidates, resolved names, wildcard state, and the admit set.
package model

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Sentinel is the candidate label that denotes the apex itself.
const Sentinel = "@"

// Candidate is a label (possibly multi-level) to be tested under an apex.
type Candidate string

// FQDN returns the fully qualified name for this candidate under apex.
// The sentinel "@" maps to the apex itself; every other candidate maps to
// "<label>.<apex>" after stripping any apex suffix it may already carry.
func (c Candidate) FQDN(apex string) string {
	sub := string(c)
	if sub == Sentinel || sub == "" {
		return apex
	}
	sub = strings.TrimSuffix(sub, "."+apex)
	sub = strings.TrimSuffix(sub, apex)
	sub = strings.Trim(sub, ".")
	if sub == "" {
		return apex
	}
	return sub + "." + apex
}

// ResolvedName is the tuple (fqdn, sorted ip-set) produced by a successful probe.
type ResolvedName struct {
	FQDN string
	IPs  []string
}

// SortedIPs returns a sorted copy of ips, deduplicated.
func SortedIPs(ips []string) []string {
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		set[ip] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for ip := range set {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

// EqualIPSets reports whether two ip-sets hold the same addresses in the
// same positions. Both must be sorted.
func EqualIPSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SubsetIPSet reports whether sub is a subset of super. Both must be sorted.
func SubsetIPSet(sub, super []string) bool {
	if len(sub) == 0 {
		return false
	}
	superSet := make(map[string]struct{}, len(super))
	for _, ip := range super {
		superSet[ip] = struct{}{}
	}
	for _, ip := range sub {
		if _, found := superSet[ip]; !found {
			return false
		}
	}
	return true
}

// WildcardState captures the result of the WildcardOracle's initialization
// pass: whether the apex's zone resolves every name to a fixed sink, the
// sink's IP set, and the baseline HTML bodies used by RSC.
type WildcardState struct {
	IsWildcard     bool
	RandomResolve  bool
	WildcardIPs    []string
	BaselineHTML2  string
	BaselineHTML3  string
	BaselineLen2   int
	BaselineLen3   int
	RSCDisabled    bool
}

// IsWildcardHit reports whether ips is a wildcard hit: equal to, or a
// subset of, the wildcard IP set.
func (w *WildcardState) IsWildcardHit(ips []string) bool {
	if !w.IsWildcard {
		return false
	}
	return EqualIPSets(ips, w.WildcardIPs) || SubsetIPSet(ips, w.WildcardIPs)
}

// CandidateSet is a deduplicated, concurrency-safe set of candidates.
type CandidateSet struct {
	mu   sync.Mutex
	seen map[Candidate]struct{}
}

// NewCandidateSet returns an empty CandidateSet.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{seen: make(map[Candidate]struct{})}
}

// Add inserts c if not already present and reports whether it was new.
func (s *CandidateSet) Add(c Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.seen[c]; found {
		return false
	}
	s.seen[c] = struct{}{}
	return true
}

// AddAll inserts every candidate in cs, skipping duplicates.
func (s *CandidateSet) AddAll(cs ...Candidate) {
	for _, c := range cs {
		s.Add(c)
	}
}

// Len returns the number of distinct candidates held.
func (s *CandidateSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Slice returns every candidate currently held, in unspecified order.
func (s *CandidateSet) Slice() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Candidate, 0, len(s.seen))
	for c := range s.seen {
		out = append(out, c)
	}
	return out
}

// AdmitSet maps fqdn to its sorted ip-set, grown monotonically by the
// resolution and RSC pipelines. It is safe for concurrent use.
type AdmitSet struct {
	mu   sync.Mutex
	data map[string][]string
}

// NewAdmitSet returns an empty AdmitSet.
func NewAdmitSet() *AdmitSet {
	return &AdmitSet{data: make(map[string][]string)}
}

// Admit records fqdn -> ips, idempotent on fqdn; returns true if this is
// the first time fqdn was admitted.
func (a *AdmitSet) Admit(fqdn string, ips []string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, found := a.data[fqdn]; found {
		return false
	}
	a.data[fqdn] = ips
	return true
}

// Has reports whether fqdn has already been admitted.
func (a *AdmitSet) Has(fqdn string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, found := a.data[fqdn]
	return found
}

// Remove deletes fqdn from the set, reporting whether it was present.
func (a *AdmitSet) Remove(fqdn string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, found := a.data[fqdn]; !found {
		return false
	}
	delete(a.data, fqdn)
	return true
}

// Snapshot returns a copy of the current fqdn -> ips map.
func (a *AdmitSet) Snapshot() map[string][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string][]string, len(a.data))
	for k, v := range a.data {
		out[k] = v
	}
	return out
}

// Len returns the number of admitted names.
func (a *AdmitSet) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.data)
}

// DiscoveryQueue is a FIFO of names harvested from HTTP responses and
// redirects, not yet tested by the RSC pipeline. A processed-set prevents
// a name from being enqueued (and therefore processed) more than once
// across a run.
type DiscoveryQueue struct {
	mu        sync.Mutex
	items     []string
	processed map[string]struct{}
}

// NewDiscoveryQueue returns an empty DiscoveryQueue.
func NewDiscoveryQueue() *DiscoveryQueue {
	return &DiscoveryQueue{processed: make(map[string]struct{})}
}

// Enqueue appends name if it has never been enqueued before, returning
// true if it was added.
func (q *DiscoveryQueue) Enqueue(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, found := q.processed[name]; found {
		return false
	}
	q.processed[name] = struct{}{}
	q.items = append(q.items, name)
	return true
}

// Drain removes and returns every name currently queued, leaving the
// queue empty. The processed-set is left intact so names already drained
// can never be re-enqueued.
func (q *DiscoveryQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len reports the number of names currently queued (not yet drained).
func (q *DiscoveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// RunStats are the per-run counters collected during an apex run and
// returned in engine.Result. ID correlates a single apex run's log lines,
// the way engine/types.Session.ID identifies a session in the teacher's
// sibling corpus.
type RunStats struct {
	mu                sync.Mutex
	ID                uuid.UUID
	Admitted          int
	DNSQueryErrors    int
	DictionaryCount   int
	ZoneTransferCount int
	CACount           int
	MultiRecordCount  int
	RSCAdmitted       int
	RSCRejected       int
}

// NewRunStats returns a RunStats tagged with a fresh run identifier.
func NewRunStats() *RunStats {
	return &RunStats{ID: uuid.New()}
}

// IncDNSQueryErrors atomically increments the global DNS query error counter.
func (s *RunStats) IncDNSQueryErrors() {
	s.mu.Lock()
	s.DNSQueryErrors++
	s.mu.Unlock()
}

// IncRSCAdmitted atomically increments the RSC-admitted counter.
func (s *RunStats) IncRSCAdmitted() {
	s.mu.Lock()
	s.RSCAdmitted++
	s.mu.Unlock()
}

// IncRSCRejected atomically increments the RSC-rejected counter.
func (s *RunStats) IncRSCRejected() {
	s.mu.Lock()
	s.RSCRejected++
	s.mu.Unlock()
}
