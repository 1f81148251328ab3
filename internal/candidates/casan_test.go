package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSANsKeepsOnlyNamesUnderApex(t *testing.T) {
	got := filterSANs([]string{"www.example.com", "mail.example.com", "other.com"}, "example.com")
	assert.ElementsMatch(t, []string{"www", "mail"}, got)
}

func TestFilterSANsExcludesWildcardEntries(t *testing.T) {
	got := filterSANs([]string{"*.example.com", "www.example.com"}, "example.com")
	assert.ElementsMatch(t, []string{"www"}, got)
}

func TestFilterSANsDropsBareApexAndDedupes(t *testing.T) {
	got := filterSANs([]string{"example.com", "www.example.com", "www.example.com."}, "example.com")
	assert.ElementsMatch(t, []string{"www"}, got)
}

func TestVerifyChainIgnoringHostnameRejectsEmptyCerts(t *testing.T) {
	err := verifyChainIgnoringHostname(nil)
	assert.Error(t, err)
}
