// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command evm is a small demonstration CLI for the execution core: it
// builds a genesis state from a config file, optionally replays a
// batch of blocks against it through the real block executor, and can
// validate a blocks file without executing it.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "evm",
		Usage: "drive the execution core's block executor from the command line",
		Commands: []*cli.Command{
			genesisCommand,
			runCommand,
			importCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "evm:", err)
		os.Exit(1)
	}
}
