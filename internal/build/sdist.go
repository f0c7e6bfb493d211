// SPDX-License-Identifier: MPL-2.0

package build

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// writeSdist writes <dist>/<stem>.tar.gz with every entry under <stem>/.
func (b *ArchiveBuilder) writeSdist(req Request, distDir string, files []string) (archivePath string, err error) {
	d := req.Descriptor
	stem := d.ArtifactStem()
	archivePath = filepath.Join(distDir, stem+".tar.gz")

	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create source archive: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	gz, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("failed to create gzip writer: %w", err)
	}
	defer func() {
		if closeErr := gz.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	tw := tar.NewWriter(gz)
	defer func() {
		if closeErr := tw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	now := b.now()
	pyproject, err := d.MarshalPyproject(req.Manifest.Packages(), req.Manifest.PackageData())
	if err != nil {
		return "", err
	}
	generated := []generatedFile{
		{"PKG-INFO", []byte(d.CoreMetadata())},
		{"pyproject.toml", pyproject},
	}
	for _, g := range generated {
		if err := writeTarBytes(tw, path.Join(stem, g.name), g.data, now); err != nil {
			return "", err
		}
	}

	entries := files
	if _, statErr := os.Stat(filepath.Join(req.Root, d.Readme)); statErr == nil {
		entries = append([]string{filepath.ToSlash(d.Readme)}, files...)
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", d.Readme, statErr)
	}

	for _, rel := range entries {
		if err := writeTarFile(tw, filepath.Join(req.Root, filepath.FromSlash(rel)), path.Join(stem, rel)); err != nil {
			return "", err
		}
	}

	return archivePath, nil
}

// generatedFile is an archive member rendered in memory.
type generatedFile struct {
	name string
	data []byte
}

func writeTarBytes(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  modTime,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func writeTarFile(tw *tar.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create tar header: %w", err)
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
