// Package main is the entry point for aws-login.
package main

import (
	"github.com/jmreicha/aws-login/internal/cli"
	"github.com/jmreicha/aws-login/internal/core"
)

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		core.Exit(err)
	}
}
