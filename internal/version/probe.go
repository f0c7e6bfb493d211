// SPDX-License-Identifier: MPL-2.0

package version

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/holoviews/hvpack/internal/config"
)

type (
	// FileProbe extracts the first capture group of Pattern from Path.
	FileProbe struct {
		Path    string
		Pattern *regexp.Regexp
	}

	// ShellProbe runs Script in the embedded shell with Dir as working
	// directory and returns its trimmed stdout.
	ShellProbe struct {
		Script string
		Dir    string
		Env    []string
	}

	// ScriptError reports a probe script that exited non-zero.
	ScriptError struct {
		ExitCode int
		Stderr   string
	}
)

// Probe implements Probe.
func (p *FileProbe) Probe(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("read version file: %w", err)
	}
	m := p.Pattern.FindSubmatch(data)
	if m == nil || len(bytes.TrimSpace(m[1])) == 0 {
		return "", ErrNoVersion
	}
	return string(bytes.TrimSpace(m[1])), nil
}

// Describe implements Probe.
func (p *FileProbe) Describe() string { return p.Path }

// Probe implements Probe.
func (p *ShellProbe) Probe(ctx context.Context) (string, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(p.Script), "version-probe")
	if err != nil {
		return "", fmt.Errorf("failed to parse script: %w", err)
	}

	env := p.Env
	if env == nil {
		env = os.Environ()
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(p.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return "", &ScriptError{ExitCode: int(exitStatus), Stderr: strings.TrimSpace(stderr.String())}
		}
		return "", err
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrNoVersion
	}
	return out, nil
}

// Describe implements Probe.
func (p *ShellProbe) Describe() string { return "version script" }

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("version script exited with status %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("version script exited with status %d", e.ExitCode)
}

// NewChecker builds the Checker selected by cfg. Relative file paths and the
// script working directory resolve against root.
func NewChecker(cfg config.VersionConfig, root string) (Checker, error) {
	switch cfg.Probe {
	case config.ProbeNone:
		return Skip{}, nil
	case config.ProbeShell:
		return NewProbeChecker(&ShellProbe{Script: cfg.Script, Dir: root}), nil
	case config.ProbeFile:
		re, err := cfg.CompilePattern()
		if err != nil {
			return nil, err
		}
		path := cfg.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		return NewProbeChecker(&FileProbe{Path: path, Pattern: re}), nil
	default:
		return nil, &config.InvalidProbeKindError{Value: cfg.Probe}
	}
}
