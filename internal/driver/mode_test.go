// SPDX-License-Identifier: MPL-2.0

package driver

import (
	"testing"

	"github.com/holoviews/hvpack/internal/build"
)

func TestParseModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want Modes
	}{
		{nil, 0},
		{[]string{"build"}, 0},
		{[]string{"develop"}, Modes(ModeDevelop)},
		{[]string{"install", "--prefix=/opt"}, Modes(ModeInstall)},
		{[]string{"--quiet", "sdist"}, Modes(ModeSdist)},
		{[]string{"sdist", "upload"}, Modes(ModeSdist | ModeUpload)},
		{[]string{"upload", "sdist"}, Modes(ModeSdist | ModeUpload)},
		{[]string{"develop", "install"}, Modes(ModeDevelop | ModeInstall)},
		{[]string{"install", "install"}, Modes(ModeInstall)},
		{[]string{"Install"}, 0},
	}

	for _, tt := range tests {
		if got := ParseModes(tt.args); got != tt.want {
			t.Errorf("ParseModes(%q) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestModesString(t *testing.T) {
	t.Parallel()

	if got := Modes(0).String(); got != "other" {
		t.Errorf("String() = %q, want other", got)
	}
	if got := ParseModes([]string{"sdist", "develop"}).String(); got != "develop+sdist" {
		t.Errorf("String() = %q, want develop+sdist", got)
	}
}

func TestModesGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args                    []string
		stages, checks, reports bool
		kind                    build.Kind
	}{
		{[]string{"develop"}, false, false, false, build.KindDevelop},
		{[]string{"install"}, true, false, true, build.KindBinary},
		{[]string{"upload"}, true, true, false, build.KindSource},
		{[]string{"sdist"}, true, true, false, build.KindSource},
		{nil, true, false, false, build.KindBinary},
		{[]string{"develop", "install"}, false, false, true, build.KindDevelop},
		{[]string{"install", "develop"}, false, false, true, build.KindDevelop},
		{[]string{"install", "sdist"}, true, true, true, build.KindSource},
		{[]string{"develop", "upload"}, false, true, false, build.KindDevelop},
	}

	for _, tt := range tests {
		modes := ParseModes(tt.args)
		t.Run(modes.String(), func(t *testing.T) {
			t.Parallel()
			if got := modes.StagesAssets(); got != tt.stages {
				t.Errorf("StagesAssets() = %v, want %v", got, tt.stages)
			}
			if got := modes.ChecksVersion(); got != tt.checks {
				t.Errorf("ChecksVersion() = %v, want %v", got, tt.checks)
			}
			if got := modes.ReportsInstall(); got != tt.reports {
				t.Errorf("ReportsInstall() = %v, want %v", got, tt.reports)
			}
			if got := modes.BuildKind(); got != tt.kind {
				t.Errorf("BuildKind() = %v, want %v", got, tt.kind)
			}
		})
	}
}
