package main

import (
	"github.com/borntyping/switchbox/internal/cli"
)

// These variables are populated by release builds via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
