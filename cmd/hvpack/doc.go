// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the hvpack command tree.
//
// Commands are built around an App, the composition root that owns the
// configuration provider, the build action and the output streams. Each
// command resolves the project (configuration, descriptor and layout) once
// and hands it to the internal packages that do the work.
package cmd
