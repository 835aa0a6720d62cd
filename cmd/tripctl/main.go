// Command tripctl validates, exports, imports and restores trip files from
// the command line, talking to the database directly.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultCLI()).Execute(); err != nil {
		os.Exit(1)
	}
}
