// main.go
package main

import cmd "github.com/agentbench/agentbench/cmd/agentbench"

// main starts the agentbench CLI application by delegating to the
// cobra root command defined in the agentbench package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
