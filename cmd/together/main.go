// together runs multiple commands in parallel, selected by an
// interactive prompt.
package main

import (
	"os"

	"github.com/nixpare/together/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
