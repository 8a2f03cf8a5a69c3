package main

import (
	"os"

	"github.com/openifc/idlgen/cli"
)

func main() {
	os.Exit(cli.Execute())
}
