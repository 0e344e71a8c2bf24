// Command graphcanvas opens graph files in an editor window, prints the
// active input bindings and manages saved node layouts.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
