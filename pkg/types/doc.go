// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the hvpack command layer
// and its services.
package types
