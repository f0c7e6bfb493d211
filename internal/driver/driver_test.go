// SPDX-License-Identifier: MPL-2.0

package driver

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/holoviews/hvpack/internal/build"
	"github.com/holoviews/hvpack/internal/config"
	"github.com/holoviews/hvpack/internal/stage"
	"github.com/holoviews/hvpack/internal/testutil"
	"github.com/holoviews/hvpack/internal/version"
	"github.com/holoviews/hvpack/pkg/descriptor"
	"github.com/holoviews/hvpack/pkg/manifest"
)

type recorder struct {
	calls []string
}

type fakeStager struct {
	rec *recorder
	err error
}

func (s *fakeStager) Stage(_ context.Context, base manifest.Manifest) (stage.Result, error) {
	s.rec.calls = append(s.rec.calls, "stage")
	if s.err != nil {
		return stage.Result{}, s.err
	}
	return stage.Result{Manifest: base.WithPackage("holoviews.assets", "*.png")}, nil
}

type fakeChecker struct {
	rec *recorder
	err error
}

func (c *fakeChecker) Verify(context.Context, string) error {
	c.rec.calls = append(c.rec.calls, "version")
	return c.err
}

type fakeBuilder struct {
	rec *recorder
	got build.Request
}

func (b *fakeBuilder) Build(_ context.Context, req build.Request) (build.Result, error) {
	b.rec.calls = append(b.rec.calls, "build")
	b.got = req
	return build.Result{Kind: req.Kind.String()}, nil
}

func holoviews(t *testing.T) *descriptor.Descriptor {
	t.Helper()
	d, err := descriptor.Builtin()
	if err != nil {
		t.Fatalf("descriptor.Builtin() error = %v", err)
	}
	return d
}

func mustPattern(t *testing.T) *regexp.Regexp {
	t.Helper()
	re, err := config.DefaultConfig().Version.CompilePattern()
	if err != nil {
		t.Fatalf("CompilePattern() error = %v", err)
	}
	return re
}

func TestRunGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantCalls []string
		wantKind  build.Kind
		report    bool
		publish   bool
	}{
		{"develop", []string{"develop"}, []string{"build"}, build.KindDevelop, false, false},
		{"install", []string{"install", "--user"}, []string{"stage", "build"}, build.KindBinary, true, false},
		{"sdist", []string{"sdist"}, []string{"stage", "version", "build"}, build.KindSource, false, false},
		{"upload", []string{"upload"}, []string{"stage", "version", "build"}, build.KindSource, false, true},
		{"sdist then upload", []string{"sdist", "upload"}, []string{"stage", "version", "build"}, build.KindSource, false, true},
		{"bdist_wheel", []string{"bdist_wheel"}, []string{"stage", "build"}, build.KindBinary, false, false},
		{"no args", nil, []string{"stage", "build"}, build.KindBinary, false, false},
		{"develop install", []string{"develop", "install"}, []string{"build"}, build.KindDevelop, true, false},
		{"install develop", []string{"install", "develop"}, []string{"build"}, build.KindDevelop, true, false},
		{"install sdist", []string{"install", "sdist"}, []string{"stage", "version", "build"}, build.KindSource, true, false},
		{"develop sdist", []string{"develop", "sdist"}, []string{"version", "build"}, build.KindDevelop, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{}
			builder := &fakeBuilder{rec: rec}
			var stdout bytes.Buffer
			d := New(Project{Root: "/src/holoviews", Descriptor: holoviews(t)}, Dependencies{
				Stager:  &fakeStager{rec: rec},
				Checker: &fakeChecker{rec: rec},
				Builder: builder,
				Stdout:  &stdout,
			})

			if _, err := d.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantCalls, rec.calls); diff != "" {
				t.Errorf("calls (-want +got):\n%s", diff)
			}
			if builder.got.Kind != tt.wantKind {
				t.Errorf("build kind = %v, want %v", builder.got.Kind, tt.wantKind)
			}
			if builder.got.Publish != tt.publish {
				t.Errorf("publish = %v, want %v", builder.got.Publish, tt.publish)
			}
			if got := strings.Contains(stdout.String(), "HOLOVIEWS INSTALLATION INFORMATION"); got != tt.report {
				t.Errorf("report printed = %v, want %v", got, tt.report)
			}
		})
	}
}

func TestRunPassesStagedManifest(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	builder := &fakeBuilder{rec: rec}
	desc := holoviews(t)
	d := New(Project{Root: "/src", Descriptor: desc}, Dependencies{Stager: &fakeStager{rec: rec}, Builder: builder})

	out, err := d.Run(context.Background(), []string{"install"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !builder.got.Manifest.Has("holoviews.assets") {
		t.Error("builder should receive the staged manifest")
	}
	if !out.Manifest.Has("holoviews.assets") {
		t.Error("outcome should carry the staged manifest")
	}
	if desc.Manifest().Has("holoviews.assets") {
		t.Error("descriptor manifest must stay unchanged")
	}
}

func TestRunDevelopUsesBaseManifest(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	builder := &fakeBuilder{rec: rec}
	desc := holoviews(t)
	d := New(Project{Root: "/src", Descriptor: desc}, Dependencies{Stager: &fakeStager{rec: rec}, Builder: builder})

	if _, err := d.Run(context.Background(), []string{"develop"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(desc.Packages, builder.got.Manifest.Packages()); diff != "" {
		t.Errorf("develop manifest (-want +got):\n%s", diff)
	}
}

func TestRunGateFailuresAbortBeforeBuild(t *testing.T) {
	t.Parallel()

	t.Run("stage failure", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		stageErr := &stage.EmptyDirectoryError{Path: "holoviews/tests"}
		d := New(Project{Root: "/src", Descriptor: holoviews(t)}, Dependencies{
			Stager:  &fakeStager{rec: rec, err: stageErr},
			Checker: &fakeChecker{rec: rec},
			Builder: &fakeBuilder{rec: rec},
		})
		_, err := d.Run(context.Background(), []string{"sdist"})
		if !errors.Is(err, stage.ErrEmptyDirectory) {
			t.Fatalf("Run() error = %v, want ErrEmptyDirectory", err)
		}
		if diff := cmp.Diff([]string{"stage"}, rec.calls); diff != "" {
			t.Errorf("calls (-want +got):\n%s", diff)
		}
	})

	t.Run("version mismatch", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		d := New(Project{Root: "/src", Descriptor: holoviews(t)}, Dependencies{
			Stager:  &fakeStager{rec: rec},
			Checker: &fakeChecker{rec: rec, err: &version.VersionMismatchError{Declared: "1.8dev4", Actual: "1.7"}},
			Builder: &fakeBuilder{rec: rec},
		})
		_, err := d.Run(context.Background(), []string{"upload"})
		if !errors.Is(err, version.ErrVersionMismatch) {
			t.Fatalf("Run() error = %v, want ErrVersionMismatch", err)
		}
		if diff := cmp.Diff([]string{"stage", "version"}, rec.calls); diff != "" {
			t.Errorf("calls (-want +got):\n%s", diff)
		}
	})
}

func TestRunRequiresDescriptor(t *testing.T) {
	t.Parallel()

	_, err := New(Project{}, Dependencies{}).Run(context.Background(), nil)
	if !errors.Is(err, ErrNoDescriptor) {
		t.Errorf("Run() error = %v, want ErrNoDescriptor", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"package.cue":               "name: \"demo\"\nversion: \"0.1\"\ndescription: \"demo\"\npackages: [\"demo\"]\nextras: [{name: \"all\", requires: [\"numpy\"]}]\n",
		"demo/__init__.py":          "__version__ = '0.1'\n",
		"doc/Tutorials/Intro.ipynb": "{}",
		"doc/Tutorials/logo.png":    "PNG",
		"tests/testdemo.py":         "",
	})
	desc, err := descriptor.Load(root, "package.cue")
	if err != nil {
		t.Fatalf("descriptor.Load() error = %v", err)
	}

	d := New(Project{Root: root, Descriptor: desc}, Dependencies{
		Stager:  stage.New(stage.Layout{Root: root, PackageDir: "demo", DocDir: "doc", TestsDir: "tests"}),
		Checker: version.NewProbeChecker(&version.FileProbe{Path: filepath.Join(root, "demo", "__init__.py"), Pattern: mustPattern(t)}),
		Builder: build.NewArchiveBuilder(),
	})

	out, err := d.Run(context.Background(), []string{"sdist"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := filepath.Join(root, "dist", "demo-0.1.tar.gz"); out.Build.Artifact != want {
		t.Errorf("artifact = %q, want %q", out.Build.Artifact, want)
	}
	// demo/__init__.py + one file in each of the three pseudo-packages.
	if out.Build.Files != 4 {
		t.Errorf("files = %d, want 4", out.Build.Files)
	}
}
