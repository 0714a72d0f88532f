// Package main is the entry point for the LexiQuest review API. It serves
// review sessions over HTTP and provides operator commands for migrations,
// importing vocabulary and issuing development tokens.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
