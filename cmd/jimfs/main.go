package main

import (
	"os"

	"github.com/JimSP/jimfs/internal/cli"
)

func main() {
	if err := cli.New().Root.Execute(); err != nil {
		os.Exit(1)
	}
}
