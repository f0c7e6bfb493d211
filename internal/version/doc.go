// SPDX-License-Identifier: MPL-2.0

// Package version checks that the version declared in the package descriptor
// matches the version the library itself reports, before a release build.
//
// The library version is obtained by a Probe: reading it from a source file
// with a regular expression, or running a short script in the embedded POSIX
// shell interpreter (mvdan.cc/sh) and taking its trimmed stdout.
package version
