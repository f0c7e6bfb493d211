// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	xslices "golang.org/x/exp/slices"
)

const (
	PseudoPackageMissingId Id = iota + 1
	PseudoPackageEmptyId
	VersionMismatchId
	DescriptorInvalidId
	ConfigLoadFailedId
	BuildFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of a catalog entry.
	MarkdownMsg string

	// HttpLink is a documentation URL attached to an entry.
	HttpLink string

	// Issue is a catalog entry explaining how to fix a class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return xslices.Clone(i.docLinks)
}

// Render renders the entry for a terminal using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	pseudoPackageMissingIssue = &Issue{
		id: PseudoPackageMissingId,
		mdMsg: `
# Pseudo-package directory is missing

A pseudo-package directory (assets, notebooks or tests) does not exist after
staging, so the release would ship without its data files.

## Things you can try
- Check that the project root is correct (` + "`--root`" + `)
- Check ` + "`project.package_dir`" + ` in your hvpack configuration
- Create the directory and rerun:
~~~
$ hvpack stage
~~~`,
		docLinks: []HttpLink{"http://holoviews.org/install.html"},
	}

	pseudoPackageEmptyIssue = &Issue{
		id: PseudoPackageEmptyId,
		mdMsg: `
# Pseudo-package directory is empty

Staging found no source files for one of the pseudo-packages.

## Where files are collected from
- assets: ` + "`doc/*/*.png`, `doc/*/*.svg`, `doc/*/*.rst`" + `
- notebooks: ` + "`doc/*/*.ipynb`, `doc/*/*.npy`" + `
- tests: ` + "`tests/*.py`" + `

## Things you can try
- Populate the documentation tree (for example, check out the doc submodule)
- Check ` + "`project.doc_dir`" + ` and ` + "`project.tests_dir`" + ` in your hvpack configuration`,
	}

	versionMismatchIssue = &Issue{
		id: VersionMismatchId,
		mdMsg: `
# Declared version does not match the library version

Release builds (sdist, upload) require the version in the package descriptor
to match the version the library reports about itself.

## Things you can try
- Update ` + "`version`" + ` in ` + "`package.cue`" + `
- Update ` + "`__version__`" + ` in the library
- Inspect the probe with ` + "`hvpack config show`",
	}

	descriptorInvalidIssue = &Issue{
		id: DescriptorInvalidId,
		mdMsg: `
# Package descriptor is invalid

The package descriptor (` + "`package.cue`" + `) failed schema validation.

## Things you can try
- Fix the field named in the error message
- Extras may only reference groups declared before them (` + "`@group`" + `)
- Remove ` + "`package.cue`" + ` to fall back to the built-in descriptor`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

## Things you can try
- Check the CUE syntax of your configuration file
- Regenerate defaults:
~~~
$ hvpack config init
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Build failed

The manifest was finalized but the distribution could not be written.

## Things you can try
- Check that every package listed in the descriptor has a directory
- Check write permissions on the dist and build directories`,
	}

	issues = map[Id]*Issue{
		pseudoPackageMissingIssue.Id(): pseudoPackageMissingIssue,
		pseudoPackageEmptyIssue.Id():   pseudoPackageEmptyIssue,
		versionMismatchIssue.Id():      versionMismatchIssue,
		descriptorInvalidIssue.Id():    descriptorInvalidIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		buildFailedIssue.Id():          buildFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
