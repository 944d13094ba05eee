// Package main is the violets command: the journal web server plus a few
// maintenance subcommands (export, import, hash-password).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "violets:", err)
		os.Exit(1)
	}
}
