// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/deckmem/pkg/cli/cmds/deck"
)
