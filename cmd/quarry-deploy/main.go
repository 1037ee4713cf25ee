// Package main is the entry point for the quarry-deploy CLI.
//
// quarry-deploy manages the CloudFormation stack backing quarry's SageMaker
// serverless inference endpoint: it packages and publishes the inference
// code, then creates, updates, tears down, or reports on the stack that
// consumes it.
package main

import (
	"fmt"
	"os"

	"github.com/quarry-ml/quarry-deploy/cmd/quarry-deploy/commands"
)

// Version information set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
