// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/holoviews/hvpack/internal/issue"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := NewProvider().(PathResolver).Resolve(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		BaseDir:       t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.cue")
	writeFile(t, path, `
project: {
	doc_dir: "docs"
	tests_dir: "holoviews/tests"
}
version: {
	probe: "shell"
	script: "echo 1.8dev4"
}
watch: debounce: "2s"
`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project.DocDir != "docs" || cfg.Project.TestsDir != "holoviews/tests" {
		t.Errorf("project = %+v", cfg.Project)
	}
	if cfg.Project.PackageDir != "holoviews" {
		t.Errorf("unset package_dir should keep default, got %q", cfg.Project.PackageDir)
	}
	if cfg.Version.Probe != ProbeShell || cfg.Version.Script != "echo 1.8dev4" {
		t.Errorf("version = %+v", cfg.Version)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("debounce = %v, want 2s", cfg.Watch.Debounce)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit config file")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if !ae.HasSuggestions() {
		t.Error("missing config error should carry suggestions")
	}
}

func TestLoad_LookupOrder(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	baseDir := t.TempDir()
	writeFile(t, filepath.Join(baseDir, ProjectConfigFileName), `project: doc_dir: "from-project"`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: cfgDir, BaseDir: baseDir})
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if cfg.Project.DocDir != "from-project" {
		t.Errorf("project config not used, doc_dir = %q", cfg.Project.DocDir)
	}
	if !strings.HasSuffix(path, ProjectConfigFileName) {
		t.Errorf("resolved path = %q", path)
	}

	writeFile(t, filepath.Join(cfgDir, "config.cue"), `project: doc_dir: "from-user"`)
	cfg, _, err = loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: cfgDir, BaseDir: baseDir})
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if cfg.Project.DocDir != "from-user" {
		t.Errorf("user config should win over project config, doc_dir = %q", cfg.Project.DocDir)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", `project: nonsense: "x"`},
		{"bad probe", `version: probe: "git"`},
		{"bad color scheme", `ui: color_scheme: "neon"`},
		{"bad debounce", `watch: debounce: "soon"`},
		{"blank dir", `project: doc_dir: "  "`},
		{"syntax error", `project: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config.cue")
			writeFile(t, path, tt.content)
			if _, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path}); err == nil {
				t.Errorf("Load() should reject %s", tt.name)
			}
		})
	}
}

func TestLoad_PostDecodeValidation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.cue")
	writeFile(t, path, `version: {probe: "file", pattern: "no groups here"}`)

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if !errors.Is(err, ErrInvalidVersionPattern) {
		t.Errorf("Load() error = %v, want ErrInvalidVersionPattern", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HVPACK_PROJECT_DOC_DIR", "documentation")
	t.Setenv("HVPACK_VERSION_PROBE", "none")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		BaseDir:       t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project.DocDir != "documentation" {
		t.Errorf("doc_dir = %q, want env override", cfg.Project.DocDir)
	}
	if cfg.Version.Probe != ProbeNone {
		t.Errorf("probe = %q, want none", cfg.Version.Probe)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Project.DocDir = "docs"
	want.UI.Verbose = true
	want.Watch.Debounce = 750 * time.Millisecond

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	if err := Save(want, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hvpack", "config.cue")
	created, err := CreateDefaultConfig(path)
	if err != nil || !created {
		t.Fatalf("CreateDefaultConfig() = %v, %v; want true, nil", created, err)
	}

	writeFile(t, path, "// edited\n")
	created, err = CreateDefaultConfig(path)
	if err != nil || created {
		t.Fatalf("second CreateDefaultConfig() = %v, %v; want false, nil", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "// edited\n" {
		t.Error("CreateDefaultConfig overwrote an existing file")
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := UserConfigPath()
	if err != nil {
		t.Fatalf("UserConfigPath() error = %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); got != want {
		t.Errorf("UserConfigPath() = %q, want %q", got, want)
	}
}
