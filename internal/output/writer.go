// Package output implements the .esd file writer described in §6: two
// files per apex, a stable name and a timestamped name, each line a
// column-aligned fqdn followed by its comma-joined ip-set.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Write renders admitted as two files under dir: "." + apex + ".esd" and
// a timestamped "." + apex + "_YYYY-MM_DD_HH-MM.esd", per §6. The column
// width is the longest fqdn plus two spaces; an empty ip-set renders as
// an empty field.
func Write(dir, apex string, admitted map[string][]string, now time.Time) (stablePath, timestampedPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("output: creating %s: %w", dir, err)
	}

	rendered := render(admitted)

	stablePath = filepath.Join(dir, "."+apex+".esd")
	timestampedPath = filepath.Join(dir, "."+apex+"_"+now.Format("2006-01_02_15-04")+".esd")

	if err := os.WriteFile(stablePath, rendered, 0o644); err != nil {
		return "", "", fmt.Errorf("output: writing %s: %w", stablePath, err)
	}
	if err := os.WriteFile(timestampedPath, rendered, 0o644); err != nil {
		return "", "", fmt.Errorf("output: writing %s: %w", timestampedPath, err)
	}
	return stablePath, timestampedPath, nil
}

// render produces the file body: fqdn-sorted lines, each fqdn padded to
// the longest fqdn's length plus two spaces, followed by its
// comma-joined, sorted ip-set (empty for an empty set).
func render(admitted map[string][]string) []byte {
	fqdns := make([]string, 0, len(admitted))
	width := 0
	for fqdn := range admitted {
		fqdns = append(fqdns, fqdn)
		if len(fqdn) > width {
			width = len(fqdn)
		}
	}
	sort.Strings(fqdns)
	width += 2

	var b strings.Builder
	for _, fqdn := range fqdns {
		ips := append([]string(nil), admitted[fqdn]...)
		sort.Strings(ips)
		b.WriteString(fqdn)
		b.WriteString(strings.Repeat(" ", width-len(fqdn)))
		b.WriteString(strings.Join(ips, ","))
		b.WriteString("\n")
	}
	return []byte(b.String())
}
