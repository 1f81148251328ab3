package candidates

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-esd/esd/internal/dnsclient"
)

// MaxMultiRecordDepth bounds the explicit work-list traversal in
// MultiRecordMine, replacing the source's unbounded recursion (§9).
const MaxMultiRecordDepth = 5

// domainNameRE is the conservative DNS-name pattern from §4.2: labels of
// alphanumerics optionally hyphenated, a TLD of at least two letters.
var domainNameRE = regexp.MustCompile(`^(([a-z0-9]+(-[a-z0-9]+)*\.)+[a-z]{2,}\.?)$`)

// MultiRecordMine queries SOA, AAAA, TXT, and MX for each seed name and
// every newly discovered name, keeping only tokens that match the
// conservative DNS-name regex and contain the queried name as a suffix.
// Traversal is an explicit work-list with a visited-set and depth cap
// instead of the original source's unbounded recursion (§9 design note).
func MultiRecordMine(ctx context.Context, probe *dnsclient.Probe, seeds []string) []string {
	if probe == nil {
		return nil
	}

	visited := make(map[string]struct{}, len(seeds))
	queue := make([]workItem, 0, len(seeds))
	for _, s := range seeds {
		queue = append(queue, workItem{name: s, depth: 0})
	}

	var discovered []string
	discoveredSet := make(map[string]struct{})

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if _, found := visited[item.name]; found {
			continue
		}
		visited[item.name] = struct{}{}

		if item.depth >= MaxMultiRecordDepth {
			continue
		}

		tokens := mineOne(ctx, probe, item.name)
		for _, tok := range tokens {
			if !validAndSuffixed(tok, item.name) {
				continue
			}
			if _, found := discoveredSet[tok]; !found {
				discoveredSet[tok] = struct{}{}
				discovered = append(discovered, tok)
			}
			if _, found := visited[tok]; !found {
				queue = append(queue, workItem{name: tok, depth: item.depth + 1})
			}
		}
	}

	return discovered
}

type workItem struct {
	name  string
	depth int
}

func mineOne(ctx context.Context, probe *dnsclient.Probe, name string) []string {
	var tokens []string
	tokens = append(tokens, probe.QuerySOA(ctx, name)...)
	tokens = append(tokens, probe.QueryAAAA(ctx, name)...)
	tokens = append(tokens, probe.QueryTXT(ctx, name)...)
	tokens = append(tokens, probe.QueryMX(ctx, name)...)
	return tokens
}

// validAndSuffixed reports whether tok looks like a DNS name and is a
// (possibly equal) suffix relationship with name, per §4.2: "contains the
// queried name as a suffix".
func validAndSuffixed(tok, name string) bool {
	tok = strings.ToLower(strings.TrimSuffix(tok, "."))
	if !domainNameRE.MatchString(tok + ".") {
		return false
	}
	return strings.HasSuffix(tok, name)
}
