// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/holoviews/hvpack/pkg/manifest"
)

const (
	// CategoryAssets holds images and rst pages from the documentation tree.
	CategoryAssets = "assets"
	// CategoryNotebooks holds notebooks and their numpy data files.
	CategoryNotebooks = "notebooks"
	// CategoryTests holds the test modules.
	CategoryTests = "tests"
)

type (
	// Source selects where a category collects files from.
	Source int

	// Category describes one pseudo-package: which files it collects and
	// where it puts them.
	Category struct {
		// Name is both the directory under the package dir and the subpackage suffix.
		Name       string
		Source     Source
		Extensions []string
	}

	// Layout locates the checkout trees relative to Root.
	Layout struct {
		Root       string
		PackageDir string
		DocDir     string
		TestsDir   string
	}

	// Stager copies files into pseudo-packages and extends the manifest.
	Stager struct {
		layout      Layout
		packageName string
		categories  []Category
		logger      *log.Logger
	}

	// Option configures a Stager.
	Option func(*Stager)

	// CategoryResult summarizes one staged category.
	CategoryResult struct {
		Category string
		Package  string
		Dir      string
		Files    []string
	}

	// Result is the outcome of Stage.
	Result struct {
		Manifest   manifest.Manifest
		Categories []CategoryResult
	}
)

const (
	// SourceDocTopics matches <doc>/<topic>/<file>, one directory level deep.
	SourceDocTopics Source = iota
	// SourceTestsFlat matches <tests>/<file> only.
	SourceTestsFlat
)

// DefaultCategories returns assets, notebooks and tests in staging order.
func DefaultCategories() []Category {
	return []Category{
		{Name: CategoryAssets, Source: SourceDocTopics, Extensions: []string{"png", "svg", "rst"}},
		{Name: CategoryNotebooks, Source: SourceDocTopics, Extensions: []string{"ipynb", "npy"}},
		{Name: CategoryTests, Source: SourceTestsFlat, Extensions: []string{"py"}},
	}
}

// WithCategories replaces the default categories.
func WithCategories(categories []Category) Option {
	return func(s *Stager) { s.categories = slices.Clone(categories) }
}

// WithLogger sets the logger used for copy and summary messages.
func WithLogger(logger *log.Logger) Option {
	return func(s *Stager) { s.logger = logger }
}

// WithPackageName overrides the importable package name, which defaults to
// PackageDir with path separators replaced by dots.
func WithPackageName(name string) Option {
	return func(s *Stager) { s.packageName = name }
}

// New creates a Stager for layout.
func New(layout Layout, opts ...Option) *Stager {
	s := &Stager{
		layout:     layout,
		categories: DefaultCategories(),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.packageName == "" {
		s.packageName = strings.ReplaceAll(filepath.ToSlash(filepath.Clean(layout.PackageDir)), "/", ".")
	}
	return s
}

// Categories returns the configured categories in staging order.
func (s *Stager) Categories() []Category {
	return slices.Clone(s.categories)
}

// PseudoPackageDir returns the destination directory of a category.
func (s *Stager) PseudoPackageDir(category string) string {
	return filepath.Join(s.layout.Root, s.layout.PackageDir, category)
}

// PseudoPackageName returns the dotted subpackage name of a category.
func (s *Stager) PseudoPackageName(category string) string {
	return s.packageName + "." + category
}

// Patterns returns "*.<ext>" for each extension of c.
func (c Category) Patterns() []string {
	patterns := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		patterns[i] = "*." + ext
	}
	return patterns
}

// Stage copies every category's files into its pseudo-package, returns base
// extended with the pseudo-packages, then verifies each pseudo-package in
// category order. Copies are not rolled back on failure.
func (s *Stager) Stage(ctx context.Context, base manifest.Manifest) (Result, error) {
	result := Result{Manifest: base}

	for _, c := range s.categories {
		staged, err := s.stageCategory(ctx, c)
		if err != nil {
			return Result{}, err
		}
		result.Categories = append(result.Categories, staged)
		result.Manifest = result.Manifest.WithPackage(staged.Package, c.Patterns()...)
		s.logger.Info("staged pseudo-package", "package", staged.Package, "files", len(staged.Files))
	}

	for _, c := range s.categories {
		if err := VerifyPseudoPackage(s.PseudoPackageDir(c.Name)); err != nil {
			return Result{}, fmt.Errorf("verify %s: %w", s.PseudoPackageName(c.Name), err)
		}
	}

	return result, nil
}

// Sources lists the files a category would collect, sorted within each
// extension, as absolute paths.
func (s *Stager) Sources(c Category) ([]string, error) {
	var dir, prefix string
	switch c.Source {
	case SourceDocTopics:
		dir, prefix = s.layout.DocDir, "*/*."
	case SourceTestsFlat:
		dir, prefix = s.layout.TestsDir, "*."
	default:
		return nil, fmt.Errorf("category %s: unknown source %d", c.Name, c.Source)
	}

	root := filepath.Join(s.layout.Root, dir)
	fsys := os.DirFS(root)

	var out []string
	for _, ext := range c.Extensions {
		matches, err := doublestar.Glob(fsys, prefix+ext, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s in %s: %w", prefix+ext, root, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			out = append(out, filepath.Join(root, filepath.FromSlash(m)))
		}
	}
	return out, nil
}

// WatchPatterns returns doublestar patterns, relative to Root, matching the
// sources of every category.
func (s *Stager) WatchPatterns() []string {
	var patterns []string
	for _, c := range s.categories {
		dir, prefix := s.layout.DocDir, "*/*."
		if c.Source == SourceTestsFlat {
			dir, prefix = s.layout.TestsDir, "*."
		}
		for _, ext := range c.Extensions {
			patterns = append(patterns, path.Join(filepath.ToSlash(dir), prefix+ext))
		}
	}
	return patterns
}

func (s *Stager) stageCategory(ctx context.Context, c Category) (CategoryResult, error) {
	dest := s.PseudoPackageDir(c.Name)
	res := CategoryResult{Category: c.Name, Package: s.PseudoPackageName(c.Name), Dir: dest}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return res, fmt.Errorf("create pseudo-package %s: %w", dest, err)
	}

	sources, err := s.Sources(c)
	if err != nil {
		return res, err
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("staging %s canceled: %w", c.Name, err)
		}
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(dest, name)); err != nil {
			return res, err
		}
		s.logger.Debug("copied", "from", src, "to", dest)
		res.Files = append(res.Files, name)
	}
	return res, nil
}

// copyFile copies the bytes of src to dst, truncating dst if it exists.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}
