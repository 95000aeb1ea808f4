// Command gorl trains and serves turn-based reinforcement learning agents
package main

import (
	"os"

	"github.com/samuelfneumann/gorl/cli"
)

func main() {
	os.Exit(cli.Execute())
}
