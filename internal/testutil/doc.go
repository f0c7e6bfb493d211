// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers build throwaway project checkouts (WriteTree, MustWriteFile),
// change directories (MustChdir), inspect results (ListNames, MustReadFile)
// and close resources (MustClose).
package testutil
