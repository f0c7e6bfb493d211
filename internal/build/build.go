// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/holoviews/hvpack/pkg/descriptor"
	"github.com/holoviews/hvpack/pkg/manifest"
)

// ReceiptFileName is written into the build directory after every build.
const ReceiptFileName = "receipt.json"

const (
	// KindSource builds a source archive (<stem>.tar.gz).
	KindSource Kind = iota
	// KindBinary builds a pure-Python wheel (<stem>-py3-none-any.whl).
	KindBinary
	// KindDevelop links the checkout in place (build/<name>.egg-link).
	KindDevelop
)

var (
	// ErrInvalidRequest is returned for a Request missing required fields.
	ErrInvalidRequest = errors.New("invalid build request")
	// ErrMissingPackage is the sentinel wrapped by MissingPackageError.
	ErrMissingPackage = errors.New("package directory is missing")
)

type (
	// Kind selects the artifact a build produces.
	Kind int

	// Builder produces a distribution artifact.
	Builder interface {
		Build(ctx context.Context, req Request) (Result, error)
	}

	// Request is everything a build needs.
	Request struct {
		// Root is the project checkout.
		Root string
		// DistDir and BuildDir are resolved against Root when relative.
		DistDir  string
		BuildDir string
		Kind     Kind
		// Publish asks for the artifact to be uploaded. Uploading is not
		// implemented; the builder logs where the artifact is instead.
		Publish    bool
		Descriptor *descriptor.Descriptor
		Manifest   manifest.Manifest
	}

	// Result describes a finished build.
	Result struct {
		BuildID  string    `json:"build_id"`
		Kind     string    `json:"kind"`
		Artifact string    `json:"artifact"`
		Files    int       `json:"files"`
		Created  time.Time `json:"created"`
	}

	// MissingPackageError reports a manifest package whose directory is absent.
	MissingPackageError struct {
		Package string
		Dir     string
	}

	// ArchiveBuilder is the default Builder.
	ArchiveBuilder struct {
		logger *log.Logger
		now    func() time.Time
		newID  func() string
	}

	// Option configures an ArchiveBuilder.
	Option func(*ArchiveBuilder)
)

// String returns the kind name used in receipts and logs.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "sdist"
	case KindBinary:
		return "wheel"
	case KindDevelop:
		return "develop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error implements the error interface.
func (e *MissingPackageError) Error() string {
	return fmt.Sprintf("package %s: directory %s does not exist", e.Package, e.Dir)
}

// Unwrap returns ErrMissingPackage for errors.Is() compatibility.
func (e *MissingPackageError) Unwrap() error { return ErrMissingPackage }

// WithLogger sets the logger used to report artifacts.
func WithLogger(logger *log.Logger) Option {
	return func(b *ArchiveBuilder) { b.logger = logger }
}

// WithClock overrides the time source used for archive entries and receipts.
func WithClock(now func() time.Time) Option {
	return func(b *ArchiveBuilder) { b.now = now }
}

// WithIDGenerator overrides build ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(b *ArchiveBuilder) { b.newID = newID }
}

// NewArchiveBuilder creates an ArchiveBuilder.
func NewArchiveBuilder(opts ...Option) *ArchiveBuilder {
	b := &ArchiveBuilder{
		logger: log.New(io.Discard),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the artifact for req.Kind and writes the receipt.
func (b *ArchiveBuilder) Build(ctx context.Context, req Request) (Result, error) {
	if req.Descriptor == nil || req.Root == "" {
		return Result{}, fmt.Errorf("%w: root and descriptor are required", ErrInvalidRequest)
	}
	if err := req.Manifest.Validate(); err != nil {
		return Result{}, err
	}

	distDir := resolve(req.Root, req.DistDir, "dist")
	buildDir := resolve(req.Root, req.BuildDir, "build")
	res := Result{BuildID: b.newID(), Kind: req.Kind.String(), Created: b.now().UTC()}

	var err error
	switch req.Kind {
	case KindDevelop:
		res.Artifact, err = b.writeEggLink(req, buildDir)
	case KindSource, KindBinary:
		var files []string
		files, err = CollectFiles(req.Root, req.Manifest)
		if err != nil {
			return Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("build canceled: %w", err)
		}
		res.Files = len(files)
		if err := os.MkdirAll(distDir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create dist directory: %w", err)
		}
		if req.Kind == KindSource {
			res.Artifact, err = b.writeSdist(req, distDir, files)
		} else {
			res.Artifact, err = b.writeWheel(req, distDir, files)
		}
	default:
		return Result{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidRequest, int(req.Kind))
	}
	if err != nil {
		return Result{}, err
	}

	if err := writeReceipt(buildDir, res); err != nil {
		return Result{}, err
	}

	b.logger.Info("built artifact", "kind", res.Kind, "path", res.Artifact, "files", res.Files, "build_id", res.BuildID)
	if req.Publish {
		b.logger.Warn("publishing to a package index is not supported; upload the artifact manually", "path", res.Artifact)
	}
	return res, nil
}

// ReadReceipt loads the receipt of the last build in buildDir.
func ReadReceipt(buildDir string) (Result, error) {
	data, err := os.ReadFile(filepath.Join(buildDir, ReceiptFileName))
	if err != nil {
		return Result{}, fmt.Errorf("read build receipt: %w", err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("decode build receipt: %w", err)
	}
	return res, nil
}

func writeReceipt(buildDir string, res Result) error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode build receipt: %w", err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, ReceiptFileName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write build receipt: %w", err)
	}
	return nil
}

func resolve(root, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
