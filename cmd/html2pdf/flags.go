package main

import (
	flag "github.com/spf13/pflag"
)

// marginSentinel detects if --margin was explicitly set. Valid margins
// are positive, so a negative value is safely out of range.
const marginSentinel = -1.0

// cliFlags holds all flags for the html2pdf command.
type cliFlags struct {
	config      string
	backend     string
	markdown    bool
	css         string
	output      string
	pageSize    string
	orientation string
	margin      float64
	timeout     string
	workers     int
	verbose     bool
	version     bool
}

// parseFlags parses command-line flags and returns them together with
// the positional arguments (input files).
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("html2pdf", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config file")
	fs.StringVarP(&f.backend, "backend", "b", "", "rendering backend: chrome, wkhtmltopdf, weasyprint, minpdf")
	fs.BoolVarP(&f.markdown, "markdown", "m", false, "treat input as Markdown (implied by .md extension)")
	fs.StringVar(&f.css, "css", "", "path to CSS file for the Markdown front-end")
	fs.StringVarP(&f.output, "output", "o", "", "output file, or directory for multiple inputs")
	fs.StringVar(&f.pageSize, "page-size", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", marginSentinel, "page margin in inches")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-conversion timeout, e.g. 90s")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions (0 = auto)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
