// Command tesc runs ".tesc" test files against a child process.
package main

import (
	"os"

	"github.com/tesc-lang/tesc/cmd/tesc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
