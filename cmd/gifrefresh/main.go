package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/gifrefresh/cmd/gifrefresh/commands"
)

const version = "0.1.0"

func main() {
	if err := commands.Run(os.Args[1:], os.Stdout, os.Stderr, version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
