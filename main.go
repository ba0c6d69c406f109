// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/rootindex/cmd/rootindex"

func main() {
	cmd.Execute()
}
