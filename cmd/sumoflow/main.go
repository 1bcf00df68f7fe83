// Package main is the entry point for the sumoflow binary.
package main

import (
	"os"

	"sumoflow/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
