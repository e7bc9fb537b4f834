// Command catalog validates a question file and converts it to the canonical
// JSON form or to a spreadsheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/p-n-ai/pai-questions/internal/admin"
	"github.com/p-n-ai/pai-questions/internal/catalog"
	"github.com/p-n-ai/pai-questions/internal/question"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "Path to the question file (.json, .yaml or .yml)")
	format := fs.String("format", "json", "Output format: json or xlsx")
	output := fs.String("output", "", "Path to the output file (defaults to stdout for json)")
	verbose := fs.Bool("verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *input == "" {
		fmt.Fprintf(stderr, "Error: input file required\n")
		fmt.Fprintf(stderr, "Usage: catalog -input <file> [-format json|xlsx] [-output <file>] [-verbose]\n")
		return 1
	}
	if *format != "json" && *format != "xlsx" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 1
	}
	if *format == "xlsx" && *output == "" {
		*output = strings.TrimSuffix(*input, filepath.Ext(*input)) + ".xlsx"
	}

	cat := catalog.Open(context.Background(), catalog.FileSource{Path: *input})
	if err := cat.Err(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	records := cat.Records()

	if *verbose {
		fmt.Fprintf(stderr, "Loaded %d questions from %s\n", len(records), *input)
	}

	if *output == "" {
		if err := write(stdout, *format, records); err != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", err)
			return 1
		}
		return 0
	}

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating output file: %v\n", err)
		return 1
	}
	err = write(f, *format, records)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}

	if *verbose {
		fmt.Fprintf(stderr, "Wrote %s\n", *output)
	}
	return 0
}

func write(w io.Writer, format string, records []question.Record) error {
	if format == "xlsx" {
		return admin.WriteXLSX(w, records)
	}
	_, err := fmt.Fprintln(w, admin.Serialize(records))
	return err
}
