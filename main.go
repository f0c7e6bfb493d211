// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/holoviews/hvpack/cmd/hvpack"

func main() {
	cmd.Execute()
}
