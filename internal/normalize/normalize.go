// Package normalize implements the RSC body normalization rule from §4.6:
// strip all whitespace and remove any <script> element lacking an src
// attribute, including its contents. Used by both the wildcard baseline
// capture and the RSC pipeline so both sides of the similarity comparison
// go through the exact same transform.
package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

// Body returns the normalized form of an HTML document body: every
// <script> tag without an src attribute is removed (tag and contents),
// then all whitespace is stripped.
//
// goquery/cascadia does the DOM-aware script removal; a plain regexp pass
// over the raw text would risk mangling scripts that themselves contain
// "<script" substrings in string literals, which the original source's
// naive regex was prone to.
func Body(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Fall back to whitespace stripping only; a malformed document
		// still participates in similarity comparison.
		return whitespace.ReplaceAllString(html, "")
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, hasSrc := s.Attr("src"); !hasSrc {
			s.Remove()
		}
	})

	out, err := doc.Html()
	if err != nil {
		return whitespace.ReplaceAllString(html, "")
	}
	return whitespace.ReplaceAllString(out, "")
}

// Idempotent reports whether normalizing again changes nothing, the
// round-trip law required by §8.
func Idempotent(s string) bool {
	return Body(s) == s
}
