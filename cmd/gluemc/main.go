// Command gluemc follows a Minecraft server log and turns its lines into
// structured events.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
