package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/execfmt/cmd/execfmt"
	"github.com/arthur-debert/execfmt/internal/version"
)

func main() {
	rootCmd := execfmt.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "EXECFMT",
		Section: "1",
		Source:  "execfmt " + version.Version,
		Manual:  "execfmt manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
