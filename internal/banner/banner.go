// Package banner prints the startup banner, grounded on owasp-amass-amass's
// printBanner in main.go: right-aligned (left-padded) version/description
// lines in fatih/color's bright colors.
package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const art = `
  ___  ___  ___
 / _ \/ __|/ _ \
|  __/\__ \ (_) |
 \___||___/\___/
`

const rightmost = 60

// Print writes the ASCII banner, version, and a one-line description to
// w, left-padded so each line ends at column rightmost, like the teacher's
// printBanner.
func Print(w io.Writer, version string) {
	r := color.New(color.FgHiRed)
	y := color.New(color.FgHiYellow)

	desc := "Concurrent subdomain enumeration"

	r.Fprintln(w, art)
	fmt.Fprint(w, strings.Repeat(" ", pad(rightmost, len(version))))
	y.Fprintln(w, version)
	fmt.Fprint(w, strings.Repeat(" ", pad(rightmost, len(desc))))
	y.Fprintf(w, "%s\n\n", desc)
}

func pad(width, n int) int {
	if width-n < 0 {
		return 0
	}
	return width - n
}
