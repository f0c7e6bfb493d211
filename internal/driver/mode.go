// SPDX-License-Identifier: MPL-2.0

package driver

import (
	"strings"

	"github.com/holoviews/hvpack/internal/build"
)

const (
	// ModeDevelop links the checkout in place; assets are not staged.
	ModeDevelop Mode = 1 << iota
	// ModeInstall prints the installation report.
	ModeInstall
	// ModeUpload is a release build that would be published.
	ModeUpload
	// ModeSdist is a release build of the source archive.
	ModeSdist
)

type (
	// Mode is one recognized mode token.
	Mode uint8

	// Modes is the set of mode tokens present on the command line. The zero
	// value is an invocation without any recognized token.
	Modes uint8
)

// modeOrder fixes the token order used by String.
var modeOrder = []Mode{ModeDevelop, ModeInstall, ModeUpload, ModeSdist}

// ParseModes records which mode tokens appear anywhere in args. Matching is
// exact; unrecognized tokens are ignored.
func ParseModes(args []string) Modes {
	var set Modes
	for _, a := range args {
		for _, m := range modeOrder {
			if a == m.String() {
				set |= Modes(m)
			}
		}
	}
	return set
}

// String returns the token of m.
func (m Mode) String() string {
	switch m {
	case ModeDevelop:
		return "develop"
	case ModeInstall:
		return "install"
	case ModeUpload:
		return "upload"
	case ModeSdist:
		return "sdist"
	default:
		return "other"
	}
}

// Has reports whether token m was present.
func (s Modes) Has(m Mode) bool { return s&Modes(m) != 0 }

// String joins the present tokens with "+", or returns "other" for none.
func (s Modes) String() string {
	var names []string
	for _, m := range modeOrder {
		if s.Has(m) {
			names = append(names, m.String())
		}
	}
	if len(names) == 0 {
		return "other"
	}
	return strings.Join(names, "+")
}

// StagesAssets is gate A: staging runs unless develop is present.
func (s Modes) StagesAssets() bool { return !s.Has(ModeDevelop) }

// ChecksVersion is gate B: the release version check runs when upload or
// sdist is present.
func (s Modes) ChecksVersion() bool { return s.Has(ModeUpload) || s.Has(ModeSdist) }

// ReportsInstall is gate C: the installation banner is printed when install
// is present.
func (s Modes) ReportsInstall() bool { return s.Has(ModeInstall) }

// Publishes reports whether the artifact is meant for a package index.
func (s Modes) Publishes() bool { return s.Has(ModeUpload) }

// BuildKind picks the artifact the build action produces. develop wins over
// a release token, which wins over a wheel.
func (s Modes) BuildKind() build.Kind {
	switch {
	case s.Has(ModeDevelop):
		return build.KindDevelop
	case s.Has(ModeUpload), s.Has(ModeSdist):
		return build.KindSource
	default:
		return build.KindBinary
	}
}
