// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/magimod/magimod/cmd/magimod"

func main() {
	cmd.Execute()
}
