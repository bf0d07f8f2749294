package main

import (
	"os"

	"github.com/roach88/gaid/internal/cli"
)

func main() {
	// Commands print their own diagnostics; here we only map the error
	// onto a process exit code.
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
