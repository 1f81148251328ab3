package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyStripsWhitespace(t *testing.T) {
	got := Body("<html>\n  <body> hi  there </body>\n</html>")
	assert.NotContains(t, got, "\n")
	assert.NotContains(t, got, "  ")
}

func TestBodyRemovesScriptWithoutSrc(t *testing.T) {
	got := Body(`<html><body><script>evil()</script>content</body></html>`)
	assert.NotContains(t, got, "evil()")
	assert.Contains(t, got, "content")
}

func TestBodyKeepsScriptWithSrc(t *testing.T) {
	got := Body(`<html><body><script src="/a.js"></script>content</body></html>`)
	assert.Contains(t, got, "/a.js")
}

func TestBodyEmptyInput(t *testing.T) {
	assert.Equal(t, "", Body(""))
}

func TestIdempotentOnAlreadyNormalizedString(t *testing.T) {
	normalized := Body("<html><body>content</body></html>")
	assert.True(t, Idempotent(normalized))
}
