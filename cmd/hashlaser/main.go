package main

import (
	"os"
)

func main() {
	shutdownChan = setupSignalHandler()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		newConsole(os.Stdout, os.Stderr, noColor, false).Error("Error: %v", err)
		os.Exit(1)
	}
}
