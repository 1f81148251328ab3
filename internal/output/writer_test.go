package output

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPadsToLongestFQDNPlusTwo(t *testing.T) {
	admitted := map[string][]string{
		"www.example.com":   {"93.184.216.34"},
		"a.example.com":     {"1.2.3.4", "1.2.3.5"},
		"empty.example.com": nil,
	}
	out := string(render(admitted))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	width := len("empty.example.com") + 2
	want := map[string]string{
		"www.example.com":   "93.184.216.34",
		"a.example.com":     "1.2.3.4,1.2.3.5",
		"empty.example.com": "",
	}
	for fqdn, ips := range want {
		expected := fqdn + strings.Repeat(" ", width-len(fqdn)) + ips
		assert.Contains(t, lines, expected)
	}
}

func TestWriteCreatesBothFiles(t *testing.T) {
	dir := t.TempDir()
	admitted := map[string][]string{"www.example.com": {"1.2.3.4"}}
	stable, timestamped, err := Write(dir, "example.com", admitted, time.Date(2026, 7, 31, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = os.Stat(stable)
	assert.NoError(t, err)
	_, err = os.Stat(timestamped)
	assert.NoError(t, err)
	assert.Contains(t, timestamped, "2026-07_31_10-30")
}
