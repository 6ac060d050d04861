package main

import (
	"fmt"
	"os"

	"github.com/nikolayk812/agrocart/internal"
)

func main() {
	if err := internal.RunServer(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
