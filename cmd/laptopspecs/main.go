package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

// errInvalidRecords is returned by normalize --strict when any record failed validation.
var errInvalidRecords = errors.New("one or more records failed validation")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "laptopspecs",
		Short:         "Extract, normalize, validate and serve laptop specifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		extractCmd(),
		normalizeCmd(),
		schemaCmd(),
		scrapeCmd(),
		indexCmd(),
		serveCmd(),
	)
	return root
}

func run(args []string, stdout, stderr io.Writer) int {
	root := rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case specs.IsConfigurationError(err):
		return 2
	default:
		return 1
	}
}
