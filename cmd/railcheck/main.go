package main

import (
	"fmt"
	"os"

	"github.com/monkeycoder/railcheck/internal/adapters/inbound/cli"
)

func main() {
	err := cli.Execute()
	if err != nil && !cli.Silent(err) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
