package main

import (
	"errors"
	"os"

	"github.com/openaudit/auditengine/cmd/auditengine/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, commands.ErrToolFailures) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
