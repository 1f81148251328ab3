package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateFQDNSentinelMapsToApex(t *testing.T) {
	assert.Equal(t, "example.com", Candidate(Sentinel).FQDN("example.com"))
	assert.Equal(t, "example.com", Candidate("").FQDN("example.com"))
}

func TestCandidateFQDNStripsApexSuffixIfPresent(t *testing.T) {
	assert.Equal(t, "www.example.com", Candidate("www").FQDN("example.com"))
	assert.Equal(t, "www.example.com", Candidate("www.example.com").FQDN("example.com"))
}

func TestSortedIPsDedupesAndSorts(t *testing.T) {
	got := SortedIPs([]string{"10.0.0.2", "10.0.0.1", "10.0.0.2"})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, got)
}

func TestEqualIPSetsRequiresSameOrderAndLength(t *testing.T) {
	assert.True(t, EqualIPSets([]string{"1.1.1.1", "2.2.2.2"}, []string{"1.1.1.1", "2.2.2.2"}))
	assert.False(t, EqualIPSets([]string{"1.1.1.1"}, []string{"1.1.1.1", "2.2.2.2"}))
}

func TestSubsetIPSetRejectsEmptySub(t *testing.T) {
	assert.False(t, SubsetIPSet(nil, []string{"1.1.1.1"}))
	assert.True(t, SubsetIPSet([]string{"1.1.1.1"}, []string{"1.1.1.1", "2.2.2.2"}))
	assert.False(t, SubsetIPSet([]string{"9.9.9.9"}, []string{"1.1.1.1"}))
}

func TestWildcardStateIsWildcardHit(t *testing.T) {
	wc := &WildcardState{IsWildcard: true, WildcardIPs: []string{"1.1.1.1", "2.2.2.2"}}
	assert.True(t, wc.IsWildcardHit([]string{"1.1.1.1", "2.2.2.2"}))
	assert.True(t, wc.IsWildcardHit([]string{"1.1.1.1"}))
	assert.False(t, wc.IsWildcardHit([]string{"3.3.3.3"}))

	notWildcard := &WildcardState{IsWildcard: false, WildcardIPs: []string{"1.1.1.1"}}
	assert.False(t, notWildcard.IsWildcardHit([]string{"1.1.1.1"}))
}

func TestCandidateSetAddIsIdempotent(t *testing.T) {
	s := NewCandidateSet()
	assert.True(t, s.Add("www"))
	assert.False(t, s.Add("www"))
	assert.Equal(t, 1, s.Len())
}

func TestCandidateSetAddAllSkipsDuplicates(t *testing.T) {
	s := NewCandidateSet()
	s.AddAll("www", "mail", "www")
	assert.Equal(t, 2, s.Len())
	assert.ElementsMatch(t, []Candidate{"www", "mail"}, s.Slice())
}

func TestAdmitSetAdmitOnceAndSnapshot(t *testing.T) {
	a := NewAdmitSet()
	assert.True(t, a.Admit("www.example.com", []string{"1.1.1.1"}))
	assert.False(t, a.Admit("www.example.com", []string{"9.9.9.9"}))
	assert.True(t, a.Has("www.example.com"))

	snap := a.Snapshot()
	assert.Equal(t, []string{"1.1.1.1"}, snap["www.example.com"])
}

func TestAdmitSetRemove(t *testing.T) {
	a := NewAdmitSet()
	a.Admit("www.example.com", []string{"1.1.1.1"})
	assert.True(t, a.Remove("www.example.com"))
	assert.False(t, a.Remove("www.example.com"))
	assert.False(t, a.Has("www.example.com"))
}

func TestDiscoveryQueueEnqueueOncePerName(t *testing.T) {
	q := NewDiscoveryQueue()
	assert.True(t, q.Enqueue("mail.example.com"))
	assert.False(t, q.Enqueue("mail.example.com"))
	assert.Equal(t, 1, q.Len())
}

func TestDiscoveryQueueDrainEmptiesButKeepsProcessedSet(t *testing.T) {
	q := NewDiscoveryQueue()
	q.Enqueue("mail.example.com")
	drained := q.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Enqueue("mail.example.com"))
}

func TestNewRunStatsAssignsDistinctIDs(t *testing.T) {
	a := NewRunStats()
	b := NewRunStats()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRunStatsIncrementsAreConcurrencySafe(t *testing.T) {
	s := NewRunStats()
	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func() {
			s.IncDNSQueryErrors()
			s.IncRSCAdmitted()
			s.IncRSCRejected()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 50; i++ {
		<-done
	}
	assert.Equal(t, 50, s.DNSQueryErrors)
	assert.Equal(t, 50, s.RSCAdmitted)
	assert.Equal(t, 50, s.RSCRejected)
}
