// Package candidates implements CandidateSources: dictionary expansion,
// zone-transfer probing, CA SAN mining, and multi-record mining, each
// returning a set of Candidate values relative to an apex (§4.2).
package candidates

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/go-esd/esd/internal/model"
)

const (
	letterAlphabet = "abcdefghijklmnopqrstuvwxyz-"
	numberAlphabet = "0123456789"
)

var dashRun = regexp.MustCompile(`-+`)

// ExpandLine expands a single dictionary line containing zero or more
// {letter} and {number} placeholders into its Cartesian-product set of
// labels, applying the dash post-filter from §4.2.
func ExpandLine(line string) []string {
	letterCount := strings.Count(line, "{letter}")
	numberCount := strings.Count(line, "{number}")

	if letterCount == 0 && numberCount == 0 {
		if cleaned := cleanLabel(line); cleaned != "" {
			return []string{cleaned}
		}
		return nil
	}

	letterCombos := combinations(letterAlphabet, letterCount)
	numberCombos := combinations(numberAlphabet, numberCount)
	if len(letterCombos) == 0 {
		letterCombos = []string{""}
	}
	if len(numberCombos) == 0 {
		numberCombos = []string{""}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, l := range letterCombos {
		withLetter := replacePlaceholder(line, "{letter}", letterCount, l)
		for _, n := range numberCombos {
			withBoth := replacePlaceholder(withLetter, "{number}", numberCount, n)
			cleaned := cleanLabel(withBoth)
			if cleaned == "" {
				continue
			}
			if _, found := seen[cleaned]; found {
				continue
			}
			seen[cleaned] = struct{}{}
			out = append(out, cleaned)
		}
	}
	return out
}

// combinations returns every length-n string drawn from alphabet's
// characters (the Cartesian product of alphabet with itself n times). For
// n == 0 it returns nil (the caller treats that as "no placeholder").
func combinations(alphabet string, n int) []string {
	if n <= 0 {
		return nil
	}
	runes := []rune(alphabet)
	total := 1
	for i := 0; i < n; i++ {
		total *= len(runes)
	}
	out := make([]string, total)
	for i := 0; i < total; i++ {
		idx := i
		b := make([]rune, n)
		for pos := n - 1; pos >= 0; pos-- {
			b[pos] = runes[idx%len(runes)]
			idx /= len(runes)
		}
		out[i] = string(b)
	}
	return out
}

// replacePlaceholder substitutes the full run of `count` adjacent
// placeholder occurrences (e.g. "{letter}{letter}") with the single
// combined value, matching the source's behavior of iterating over
// letterCount-length tuples and splicing the joined tuple in as one
// string — "the same repetition count per placeholder applied to all
// occurrences of that placeholder on that line" in §4.2.
func replacePlaceholder(line, placeholder string, count int, value string) string {
	if count == 0 {
		return line
	}
	return strings.ReplaceAll(line, strings.Repeat(placeholder, count), value)
}

// cleanLabel strips leading/trailing '-', collapses runs of '-', per §4.2.
func cleanLabel(s string) string {
	s = strings.Trim(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return s
}

// LoadDictionary reads a line-oriented dictionary from r, skipping blank
// lines and comment lines (any line containing '#') and expanding
// placeholder lines. The result is deduplicated. The "@" apex sentinel is
// not included here — Shard appends it to every shard it produces, so the
// apex is always tested regardless of which shard a run covers.
func LoadDictionary(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	seen := make(map[string]struct{})
	var out []string
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.Contains(line, "#") {
			continue
		}
		for _, expanded := range ExpandLine(line) {
			if _, found := seen[expanded]; found {
				continue
			}
			seen[expanded] = struct{}{}
			out = append(out, expanded)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("candidates: reading dictionary: %w", err)
	}
	return out, nil
}

// Shard partitions dicts into n 1-indexed shards of ceil(len/n) entries
// each and returns shard k with the "@" apex sentinel appended (§4.2, §8
// scenario 5), so the apex itself is tested in every shard regardless of
// which one a given run covers. It is a fatal ConfigurationError (per
// §7/§9) for the caller to request k > n or either bound < 1; Shard
// itself just returns an error so the CLI layer can surface it before the
// engine starts.
func Shard(dicts []string, k, n int) ([]string, error) {
	if n < 1 || k < 1 || k > n {
		return nil, fmt.Errorf("candidates: invalid split %d/%d", k, n)
	}
	if n == 1 {
		return append(append([]string{}, dicts...), model.Sentinel), nil
	}

	every := int(math.Ceil(float64(len(dicts)) / float64(n)))
	if every == 0 {
		return []string{model.Sentinel}, nil
	}

	start := (k - 1) * every
	if start >= len(dicts) {
		return []string{model.Sentinel}, nil
	}
	end := start + every
	if end > len(dicts) {
		end = len(dicts)
	}
	shard := append([]string{}, dicts[start:end]...)
	return append(shard, model.Sentinel), nil
}
