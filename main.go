// Package main is the entry point for the paned host monitoring daemon.
package main

import (
	"fmt"
	"os"

	"dublimator.xyz/paned/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
