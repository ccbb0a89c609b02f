// Command keepconf checks Keep descriptor configurations.
package main

import (
	"os"

	"github.com/roach88/keepconf/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:], os.Stdout, os.Stderr))
}
