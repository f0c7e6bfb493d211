// SPDX-License-Identifier: MPL-2.0

// Package stage copies documentation assets, notebooks and test modules into
// pseudo-packages under the library package directory, so they ship as
// package data, and verifies each pseudo-package exists and is populated.
package stage
