// SPDX-License-Identifier: MPL-2.0

// Package report renders the installation information banner printed on
// install runs.
package report

import (
	"fmt"
	"io"
	"strings"
)

// Info is what the banner needs to know about the library.
type Info struct {
	// Name is the distribution name, used for the header and extras lines.
	Name string
	// DisplayName is the human-facing name used in the prose.
	DisplayName string
	// Extras are the extras group names in declaration order.
	Extras []string
	// InstallURL is the page users are pointed to for more information.
	InstallURL string
}

// Header returns "<NAME> INSTALLATION INFORMATION".
func (i Info) Header() string {
	return strings.ToUpper(i.Name) + " INSTALLATION INFORMATION"
}

// ExtrasLines returns one "<name>[<extra>]" line per group.
func (i Info) ExtrasLines() []string {
	lines := make([]string, len(i.Extras))
	for n, e := range i.Extras {
		lines[n] = fmt.Sprintf("%s[%s]", i.Name, e)
	}
	return lines
}

// Render returns the banner text.
func Render(i Info) string {
	header := i.Header()
	bars := strings.Repeat("=", len(header))
	display := i.DisplayName
	if display == "" {
		display = i.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n", bars, header, bars)
	fmt.Fprintf(&b, "\n%s supports the following installation types:\n\n", display)
	fmt.Fprintf(&b, "%s\n\n", strings.Join(i.ExtrasLines(), "\n"))
	b.WriteString("Users should consider using one of these options.\n\n")
	b.WriteString("By default only a core installation is performed and \n")
	b.WriteString("only the minimal set of dependencies are fetched.\n\n\n")
	fmt.Fprintf(&b, "For more information please visit %s\n\n", i.InstallURL)
	b.WriteString(bars + "\n\n")
	return b.String()
}

// Write renders the banner to w.
func Write(w io.Writer, i Info) error {
	if _, err := io.WriteString(w, Render(i)); err != nil {
		return fmt.Errorf("write installation report: %w", err)
	}
	return nil
}
