// Command navegante is the catalog and order backend for the navegante
// point-of-sale UI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/navegante/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
