// keysim types text, or a script that rebuilds a file, into the focused
// window by injecting synthetic keystrokes.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
