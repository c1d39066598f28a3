package main

import (
	"github.com/robotalks/deckmem/pkg/cli/sh"
	"github.com/robotalks/deckmem/pkg/env"

	_ "github.com/robotalks/deckmem/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
