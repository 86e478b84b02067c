package main

import (
	"fmt"
	"os"

	"github.com/corpora-dev/corpora/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "corpora:", err)
		os.Exit(1)
	}
}
