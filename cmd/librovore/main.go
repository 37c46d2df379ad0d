// Package main provides the entry point for the librovore CLI.
package main

import (
	"os"

	"github.com/emcd/librovore/cmd/librovore/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
