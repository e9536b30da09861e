package main

import (
	"os"

	"github.com/leefowlercu/compage/cmd"
	"github.com/leefowlercu/compage/component"

	// Linked-in components register themselves with component.Default.
	_ "github.com/leefowlercu/compage/internal/components"
)

func main() {
	os.Exit(component.ExitCode(cmd.Execute()))
}
