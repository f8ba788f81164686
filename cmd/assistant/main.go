package main

import (
	"os"

	"github.com/cagandemirsamli/personalassistant/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
