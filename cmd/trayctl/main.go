// Package main is the entry point for the trayctl CLI.
package main

import (
	"os"

	"github.com/thrightguy/CloudToLocalLLM/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
