package candidates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandLineBareLetter(t *testing.T) {
	out := ExpandLine("{letter}")
	// 27 raw picks (a-z plus '-'); the '-' pick strips to empty and is dropped.
	assert.Len(t, out, 26)
	for _, label := range out {
		assert.NotContains(t, label, "-")
	}
}

func TestExpandLineDoubleLetterIsCartesianProduct(t *testing.T) {
	out := ExpandLine("{letter}{letter}")
	// 27*27 raw combinations, minus any that collapse to empty/duplicate
	// under the dash post-filter.
	assert.Less(t, len(out), 27*27+1)
	assert.Greater(t, len(out), 0)
	seen := make(map[string]struct{})
	for _, label := range out {
		_, dup := seen[label]
		assert.False(t, dup, "duplicate label %q", label)
		seen[label] = struct{}{}
		assert.False(t, strings.HasPrefix(label, "-"))
		assert.False(t, strings.HasSuffix(label, "-"))
		assert.NotContains(t, label, "--")
	}
}

func TestExpandLineLiteral(t *testing.T) {
	assert.Equal(t, []string{"www"}, ExpandLine("www"))
}

func TestExpandLineNumberPlaceholder(t *testing.T) {
	out := ExpandLine("host{number}")
	assert.Len(t, out, 10)
	assert.Contains(t, out, "host0")
	assert.Contains(t, out, "host9")
}

func TestCleanLabelCollapsesDashRuns(t *testing.T) {
	assert.Equal(t, "a-b", cleanLabel("--a---b--"))
	assert.Equal(t, "", cleanLabel("---"))
}

func TestLoadDictionarySkipsCommentsAndBlanks(t *testing.T) {
	src := "www\n# comment\n\nmail\nftp # inline comment\n"
	out, err := LoadDictionary(strings.NewReader(src))
	require.NoError(t, err)
	assert.Contains(t, out, "www")
	assert.Contains(t, out, "mail")
	assert.NotContains(t, out, "ftp") // line contains '#', entire line skipped
	assert.NotContains(t, out, "@")   // sentinel is added by Shard, not LoadDictionary
}

func TestLoadDictionaryDeduplicates(t *testing.T) {
	out, err := LoadDictionary(strings.NewReader("www\nwww\nWWW\n"))
	require.NoError(t, err)
	count := 0
	for _, v := range out {
		if v == "www" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestShardPartitionsTheWholeSet(t *testing.T) {
	dicts := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	n := 3
	var all []string
	sentinels := 0
	for k := 1; k <= n; k++ {
		shard, err := Shard(dicts, k, n)
		require.NoError(t, err)
		for _, v := range shard {
			if v == "@" {
				sentinels++
				continue
			}
			all = append(all, v)
		}
	}
	assert.ElementsMatch(t, dicts, all)
	assert.Equal(t, n, sentinels, "the apex sentinel must appear in every shard")
}

func TestShardRejectsMalformedSplit(t *testing.T) {
	_, err := Shard([]string{"a"}, 2, 1)
	assert.Error(t, err)

	_, err = Shard([]string{"a"}, 0, 1)
	assert.Error(t, err)
}

func TestShardWholeSetStillAppendsSentinel(t *testing.T) {
	shard, err := Shard([]string{"a", "b"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "@"}, shard)
}
