// Command switchboard runs the account API and the broadcast relay.
package main

import (
	"os"
)

// Set at build time.
var version = "dev"

func main() {
	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
