// Command patscope is the patent landscape analytics CLI.
package main

import (
	"os"

	"github.com/patlytics/patscope/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
