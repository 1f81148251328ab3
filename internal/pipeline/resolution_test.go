package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-esd/esd/internal/model"
)

func TestClassifyDiscardsEmptyIPs(t *testing.T) {
	r := classify("foo.example.com", nil, nil, nil)
	assert.Equal(t, OutcomeDiscarded, r.Outcome)
}

func TestClassifyAdmitsNonWildcardHit(t *testing.T) {
	admit := model.NewAdmitSet()
	r := classify("foo.example.com", []string{"1.2.3.4"}, &model.WildcardState{}, admit)
	assert.Equal(t, OutcomeAdmitted, r.Outcome)
	assert.True(t, admit.Has("foo.example.com"))
}

func TestClassifyForwardsWildcardHit(t *testing.T) {
	wc := &model.WildcardState{IsWildcard: true, WildcardIPs: []string{"9.9.9.9"}}
	admit := model.NewAdmitSet()
	r := classify("foo.example.com", []string{"9.9.9.9"}, wc, admit)
	assert.Equal(t, OutcomeWildcardHit, r.Outcome)
	assert.False(t, admit.Has("foo.example.com"))
}

func TestResolveNilProbeReturnsNil(t *testing.T) {
	assert.Nil(t, Resolve(nil, nil, "example.com", []model.Candidate{"www"}, nil, nil, 0, nil))
}
