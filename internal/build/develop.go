// SPDX-License-Identifier: MPL-2.0

package build

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeEggLink records the absolute checkout path in <build>/<name>.egg-link,
// the file setuptools' develop command leaves behind.
func (b *ArchiveBuilder) writeEggLink(req Request, buildDir string) (string, error) {
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", fmt.Errorf("create build directory: %w", err)
	}

	link := filepath.Join(buildDir, req.Descriptor.Name+".egg-link")
	if err := os.WriteFile(link, []byte(root+"\n.\n"), 0o644); err != nil {
		return "", fmt.Errorf("write egg-link: %w", err)
	}
	return link, nil
}
