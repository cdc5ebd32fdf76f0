package main

import (
	"github.com/JakeFAU/content-relay/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
