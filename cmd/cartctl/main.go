package main

import (
	"fmt"
	"os"

	"github.com/nikolayk812/agrocart/internal"
	"github.com/nikolayk812/agrocart/internal/cli"
)

func main() {
	if err := internal.RunClient(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.Describe(err))
		os.Exit(1)
	}
}
