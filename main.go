// main package for modulize command-line tool
// Package main is the entry point for the modulize CLI.
package main

import "modulize.dev/pkg/modulize/cmd"

func main() {
	cmd.Execute()
}
