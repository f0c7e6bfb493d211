// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"strings"
)

// CoreMetadataVersion is the Metadata-Version written to PKG-INFO and METADATA.
const CoreMetadataVersion = "2.1"

// CoreMetadata renders the PKG-INFO / METADATA document: RFC 822 style
// headers followed by a blank line and the long description.
func (d *Descriptor) CoreMetadata() string {
	var b strings.Builder
	header := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}

	header("Metadata-Version", CoreMetadataVersion)
	header("Name", d.Name)
	header("Version", d.Version)
	header("Summary", d.Description)
	header("Home-page", d.URL)
	header("Author", d.Author)
	header("Author-email", d.AuthorEmail)
	header("Maintainer", d.Maintainer)
	header("Maintainer-email", d.MaintainerEmail)
	header("License", d.License)
	for _, p := range d.Platforms {
		header("Platform", p)
	}
	for _, c := range d.Classifiers {
		header("Classifier", c)
	}
	for _, r := range d.InstallRequires {
		header("Requires-Dist", r)
	}
	for _, g := range d.extras {
		header("Provides-Extra", g.Name)
		for _, r := range g.Requires {
			header("Requires-Dist", fmt.Sprintf("%s; extra == %q", r, g.Name))
		}
	}
	if strings.HasSuffix(d.Readme, ".rst") {
		header("Description-Content-Type", "text/x-rst")
	} else if strings.HasSuffix(d.Readme, ".md") {
		header("Description-Content-Type", "text/markdown")
	}

	b.WriteString("\n")
	b.WriteString(d.LongDescription)
	if !strings.HasSuffix(d.LongDescription, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
