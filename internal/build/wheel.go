// SPDX-License-Identifier: MPL-2.0

package build

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const wheelTag = "py3-none-any"

// writeWheel writes <dist>/<stem>-py3-none-any.whl with package files at
// their import paths and a <stem>.dist-info directory.
func (b *ArchiveBuilder) writeWheel(req Request, distDir string, files []string) (wheelPath string, err error) {
	d := req.Descriptor
	stem := d.ArtifactStem()
	distInfo := stem + ".dist-info"
	wheelPath = filepath.Join(distDir, stem+"-"+wheelTag+".whl")

	zipFile, err := os.Create(wheelPath)
	if err != nil {
		return "", fmt.Errorf("failed to create wheel: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zipWriter := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var record []string
	for _, rel := range files {
		data, readErr := os.ReadFile(filepath.Join(req.Root, filepath.FromSlash(rel)))
		if readErr != nil {
			return "", fmt.Errorf("failed to read file %s: %w", rel, readErr)
		}
		line, addErr := addZipEntry(zipWriter, rel, data, b.now())
		if addErr != nil {
			return "", addErr
		}
		record = append(record, line)
	}

	meta := []generatedFile{
		{"METADATA", []byte(d.CoreMetadata())},
		{"WHEEL", []byte(fmt.Sprintf("Wheel-Version: 1.0\nGenerator: hvpack\nRoot-Is-Purelib: true\nTag: %s\n", wheelTag))},
		{"top_level.txt", []byte(topLevel(req.Manifest.Packages()))},
	}
	if len(d.EntryPoints) > 0 {
		meta = append(meta, generatedFile{"entry_points.txt", []byte(entryPointsText(d.EntryPoints))})
	}
	for _, m := range meta {
		line, addErr := addZipEntry(zipWriter, distInfo+"/"+m.name, m.data, b.now())
		if addErr != nil {
			return "", addErr
		}
		record = append(record, line)
	}

	recordName := distInfo + "/RECORD"
	record = append(record, recordName+",,")
	w, err := zipWriter.CreateHeader(&zip.FileHeader{Name: recordName, Method: zip.Deflate, Modified: b.now()})
	if err != nil {
		return "", fmt.Errorf("failed to create ZIP entry: %w", err)
	}
	if _, err := io.WriteString(w, strings.Join(record, "\n")+"\n"); err != nil {
		return "", fmt.Errorf("failed to write RECORD: %w", err)
	}

	return wheelPath, nil
}

// addZipEntry deflates data into name and returns its RECORD line.
func addZipEntry(zw *zip.Writer, name string, data []byte, modTime time.Time) (string, error) {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modTime})
	if err != nil {
		return "", fmt.Errorf("failed to create ZIP entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file to ZIP: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s,sha256=%s,%d", name, base64.RawURLEncoding.EncodeToString(sum[:]), len(data)), nil
}

func topLevel(packages []string) string {
	var tops []string
	for _, p := range packages {
		top, _, _ := strings.Cut(p, ".")
		if !slices.Contains(tops, top) {
			tops = append(tops, top)
		}
	}
	return strings.Join(tops, "\n") + "\n"
}

func entryPointsText(groups map[string][]string) string {
	var b strings.Builder
	for _, group := range slices.Sorted(maps.Keys(groups)) {
		fmt.Fprintf(&b, "[%s]\n", group)
		for _, spec := range groups[group] {
			name, target, _ := strings.Cut(spec, "=")
			fmt.Fprintf(&b, "%s = %s\n", strings.TrimSpace(name), strings.TrimSpace(target))
		}
		b.WriteString("\n")
	}
	return b.String()
}
