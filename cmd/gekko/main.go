// Command gekko runs the Gekko scripting language interpreter.
package main

import "github.com/dimetcm/gekko/cmd/gekko/cmd"

func main() {
	cmd.Execute()
}
