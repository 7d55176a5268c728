package main

import (
	"os"

	"github.com/spigell/li-responder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
