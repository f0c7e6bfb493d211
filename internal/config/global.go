// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride allows tests to redirect the user config directory.
var configDirOverride string

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride points ConfigDir at dir. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
