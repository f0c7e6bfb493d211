// SPDX-License-Identifier: MPL-2.0

package build

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"

	"github.com/holoviews/hvpack/internal/testutil"
	"github.com/holoviews/hvpack/pkg/descriptor"
	"github.com/holoviews/hvpack/pkg/manifest"
)

var fixedTime = time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC)

func testDescriptor(t *testing.T) *descriptor.Descriptor {
	t.Helper()
	d, err := descriptor.Parse([]byte(`
name: "demo"
version: "0.3"
description: "demo package"
packages: ["demo", "demo.plotting"]
package_data: "demo.plotting": ["*.js"]
entry_points: console_scripts: ["demo = demo.cli:main"]
extras: [{name: "all", requires: ["numpy"]}]
`), "package.cue")
	if err != nil {
		t.Fatalf("descriptor.Parse() error = %v", err)
	}
	return d
}

func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"README.rst":                "Demo\n====\n",
		"demo/__init__.py":          "__version__ = '0.3'\n",
		"demo/core.py":              "x = 1\n",
		"demo/notes.txt":            "not shipped",
		"demo/plotting/__init__.py": "",
		"demo/plotting/widget.js":   "var w;",
		"demo/plotting/widget.css":  "not matched",
		"demo/plotting/sub/":        "",
	})
	return root
}

func newTestBuilder() *ArchiveBuilder {
	return NewArchiveBuilder(
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string { return "0e2a9c1e-7f43-4c09-9d0e-3c3f0a1b2c3d" }),
	)
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	root := project(t)
	d := testDescriptor(t)
	files, err := CollectFiles(root, d.Manifest())
	if err != nil {
		t.Fatalf("CollectFiles() error = %v", err)
	}
	want := []string{
		"demo/__init__.py",
		"demo/core.py",
		"demo/plotting/__init__.py",
		"demo/plotting/widget.js",
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("CollectFiles() (-want +got):\n%s", diff)
	}
}

func TestCollectFilesMissingPackage(t *testing.T) {
	t.Parallel()

	m := manifest.New([]string{"demo", "demo.assets"}, nil)
	root := project(t)
	_, err := CollectFiles(root, m)
	var missing *MissingPackageError
	if !errors.As(err, &missing) || missing.Package != "demo.assets" {
		t.Fatalf("CollectFiles() = %v, want *MissingPackageError for demo.assets", err)
	}
	if !errors.Is(err, ErrMissingPackage) {
		t.Error("error should wrap ErrMissingPackage")
	}
}

func TestBuildSource(t *testing.T) {
	t.Parallel()

	root := project(t)
	d := testDescriptor(t)
	res, err := newTestBuilder().Build(context.Background(), Request{
		Root:       root,
		Kind:       KindSource,
		Descriptor: d,
		Manifest:   d.Manifest(),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := filepath.Join(root, "dist", "demo-0.3.tar.gz"); res.Artifact != want {
		t.Errorf("Artifact = %q, want %q", res.Artifact, want)
	}
	if res.Files != 4 || res.Kind != "sdist" {
		t.Errorf("result = %+v", res)
	}

	f, err := os.Open(res.Artifact)
	if err != nil {
		t.Fatal(err)
	}
	defer testutil.MustClose(t, f)
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	tr := tar.NewReader(gz)

	contents := map[string]string{}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("tar Next() error = %v", err)
		}
		data, _ := io.ReadAll(tr)
		contents[hdr.Name] = string(data)
	}

	for _, name := range []string{
		"demo-0.3/PKG-INFO",
		"demo-0.3/pyproject.toml",
		"demo-0.3/README.rst",
		"demo-0.3/demo/__init__.py",
		"demo-0.3/demo/core.py",
		"demo-0.3/demo/plotting/__init__.py",
		"demo-0.3/demo/plotting/widget.js",
	} {
		if _, ok := contents[name]; !ok {
			t.Errorf("archive missing %s", name)
		}
	}
	if len(contents) != 7 {
		t.Errorf("archive has %d entries, want 7", len(contents))
	}
	if !strings.Contains(contents["demo-0.3/PKG-INFO"], "Name: demo\n") {
		t.Errorf("PKG-INFO = %q", contents["demo-0.3/PKG-INFO"])
	}
	if !strings.Contains(contents["demo-0.3/pyproject.toml"], "demo.plotting") {
		t.Errorf("pyproject.toml missing packages:\n%s", contents["demo-0.3/pyproject.toml"])
	}
}

func TestBuildWheel(t *testing.T) {
	t.Parallel()

	root := project(t)
	d := testDescriptor(t)
	res, err := newTestBuilder().Build(context.Background(), Request{
		Root:       root,
		DistDir:    "out",
		Kind:       KindBinary,
		Descriptor: d,
		Manifest:   d.Manifest(),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := filepath.Join(root, "out", "demo-0.3-py3-none-any.whl"); res.Artifact != want {
		t.Errorf("Artifact = %q, want %q", res.Artifact, want)
	}

	zr, err := zip.OpenReader(res.Artifact)
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer testutil.MustClose(t, zr)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{
		"demo/__init__.py",
		"demo/core.py",
		"demo/plotting/__init__.py",
		"demo/plotting/widget.js",
		"demo-0.3.dist-info/METADATA",
		"demo-0.3.dist-info/WHEEL",
		"demo-0.3.dist-info/top_level.txt",
		"demo-0.3.dist-info/entry_points.txt",
		"demo-0.3.dist-info/RECORD",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("wheel entries (-want +got):\n%s", diff)
	}

	record := readZipEntry(t, zr, "demo-0.3.dist-info/RECORD")
	if !strings.Contains(record, "demo/core.py,sha256=") || !strings.HasSuffix(record, "demo-0.3.dist-info/RECORD,,\n") {
		t.Errorf("RECORD = %q", record)
	}
	if ep := readZipEntry(t, zr, "demo-0.3.dist-info/entry_points.txt"); ep != "[console_scripts]\ndemo = demo.cli:main\n\n" {
		t.Errorf("entry_points.txt = %q", ep)
	}
}

func readZipEntry(t *testing.T, zr *zip.ReadCloser, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer testutil.MustClose(t, rc)
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("zip entry %s not found", name)
	return ""
}

func TestBuildDevelop(t *testing.T) {
	t.Parallel()

	root := project(t)
	d := testDescriptor(t)
	res, err := newTestBuilder().Build(context.Background(), Request{
		Root:       root,
		Kind:       KindDevelop,
		Descriptor: d,
		Manifest:   d.Manifest(),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := filepath.Join(root, "build", "demo.egg-link"); res.Artifact != want {
		t.Errorf("Artifact = %q, want %q", res.Artifact, want)
	}
	if got := testutil.MustReadFile(t, res.Artifact); !strings.HasSuffix(got, "\n.\n") {
		t.Errorf("egg-link = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); !os.IsNotExist(err) {
		t.Error("develop builds should not create dist/")
	}
}

func TestBuildReceipt(t *testing.T) {
	t.Parallel()

	root := project(t)
	d := testDescriptor(t)
	res, err := newTestBuilder().Build(context.Background(), Request{
		Root:       root,
		Kind:       KindSource,
		Publish:    true,
		Descriptor: d,
		Manifest:   d.Manifest(),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got, err := ReadReceipt(filepath.Join(root, "build"))
	if err != nil {
		t.Fatalf("ReadReceipt() error = %v", err)
	}
	if diff := cmp.Diff(res, got); diff != "" {
		t.Errorf("receipt (-want +got):\n%s", diff)
	}
	if got.BuildID != "0e2a9c1e-7f43-4c09-9d0e-3c3f0a1b2c3d" || !got.Created.Equal(fixedTime) {
		t.Errorf("receipt = %+v", got)
	}
}

func TestBuildDefaultIDIsUUID(t *testing.T) {
	t.Parallel()

	root := project(t)
	d := testDescriptor(t)
	res, err := NewArchiveBuilder().Build(context.Background(), Request{Root: root, Kind: KindDevelop, Descriptor: d, Manifest: d.Manifest()})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(res.BuildID) != 36 || strings.Count(res.BuildID, "-") != 4 {
		t.Errorf("BuildID = %q, want a UUID", res.BuildID)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	d := testDescriptor(t)
	b := newTestBuilder()

	if _, err := b.Build(context.Background(), Request{Root: t.TempDir()}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Build() without descriptor = %v, want ErrInvalidRequest", err)
	}
	if _, err := b.Build(context.Background(), Request{Root: t.TempDir(), Kind: Kind(9), Descriptor: d, Manifest: d.Manifest()}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Build() with unknown kind = %v, want ErrInvalidRequest", err)
	}
	if _, err := b.Build(context.Background(), Request{Root: t.TempDir(), Kind: KindBinary, Descriptor: d, Manifest: d.Manifest()}); !errors.Is(err, ErrMissingPackage) {
		t.Errorf("Build() of empty checkout = %v, want ErrMissingPackage", err)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	for kind, want := range map[Kind]string{KindSource: "sdist", KindBinary: "wheel", KindDevelop: "develop", Kind(7): "Kind(7)"} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
