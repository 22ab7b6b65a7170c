// Package main provides the entry point for the slowserve CLI.
package main

import (
	"fmt"
	"os"

	"github.com/hotafrika/slowserve/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
