// SPDX-License-Identifier: MPL-2.0

// Package descriptor loads the static packaging metadata of the library:
// name, version, authorship, requirements, extras groups, packages and
// per-package data patterns.
//
// Descriptors are CUE documents validated against descriptor_schema.cue.
// The HoloViews descriptor is embedded and used whenever the project root
// does not carry its own package.cue.
//
// Extras groups are declared in order. A requirement of the form "@group"
// splices the resolved list of an earlier group at that position, so groups
// compose by plain concatenation without deduplication.
package descriptor
