// Command temporalq translates entity queries into point-in-time SQL.
package main

import (
	"os"

	"github.com/roach88/temporalq/internal/cli"
)

func main() {
	// Commands report their own errors; only the exit code is left to set.
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
