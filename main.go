// SPDX-License-Identifier: MPL-2.0

package main

import cmd "mrp-cli/cmd/mrp"

func main() {
	cmd.Execute()
}
