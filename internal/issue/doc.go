// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages for the failures an operator can fix by hand (a missing or empty
// pseudo-package, a version mismatch, a broken descriptor or config file).
package issue
