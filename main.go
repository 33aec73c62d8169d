package main

import (
	"os"

	"github.com/connect-rnd/grant-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
