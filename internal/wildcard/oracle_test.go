package wildcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFromAnswersNoWildcard(t *testing.T) {
	wc, rr, ips := DetectFromAnswers([][]string{nil, nil})
	assert.False(t, wc)
	assert.False(t, rr)
	assert.Nil(t, ips)
}

func TestDetectFromAnswersStableWildcard(t *testing.T) {
	wc, rr, ips := DetectFromAnswers([][]string{{"1.2.3.4"}, {"1.2.3.4"}})
	assert.True(t, wc)
	assert.False(t, rr)
	assert.Equal(t, []string{"1.2.3.4"}, ips)
}

func TestDetectFromAnswersRandomResolve(t *testing.T) {
	wc, rr, ips := DetectFromAnswers([][]string{{"1.2.3.4"}, {"5.6.7.8"}})
	assert.True(t, wc)
	assert.True(t, rr)
	assert.Nil(t, ips)
}

func TestRandomLabelUnique(t *testing.T) {
	a := RandomLabel()
	b := RandomLabel()
	assert.NotEqual(t, a, b)
}
