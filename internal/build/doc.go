// SPDX-License-Identifier: MPL-2.0

// Package build turns a finalized manifest and package descriptor into a
// distribution artifact.
//
// ArchiveBuilder produces three kinds of output: a gzip-compressed source
// tarball, a pure-Python wheel, or an egg-link pointing at the checkout for
// development installs. Every build is stamped with a UUID recorded in
// build/receipt.json next to the artifact path and file count.
package build
