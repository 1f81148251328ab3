package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAndSuffixedAcceptsSubdomain(t *testing.T) {
	assert.True(t, validAndSuffixed("mail.example.com", "example.com"))
}

func TestValidAndSuffixedRejectsUnrelatedName(t *testing.T) {
	assert.False(t, validAndSuffixed("mail.other.com", "example.com"))
}

func TestValidAndSuffixedRejectsMalformedToken(t *testing.T) {
	assert.False(t, validAndSuffixed("not a hostname example.com", "example.com"))
	assert.False(t, validAndSuffixed("", "example.com"))
}

func TestMultiRecordMineNilProbeReturnsNil(t *testing.T) {
	assert.Nil(t, MultiRecordMine(nil, nil, []string{"example.com"}))
}
