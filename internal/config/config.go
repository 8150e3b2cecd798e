// Package config parses and validates the chidian CLI configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ericpan64/chidian/internal/codec"
	"github.com/ericpan64/chidian/internal/exit"
)

var (
	ErrNoArguments  = errors.New("no arguments provided")
	ErrNoOperation  = errors.New("one of -p, -jsonpath or -m is required")
	ErrManyOps      = errors.New("-p, -jsonpath and -m are mutually exclusive")
	ErrRateWithout  = errors.New("-rate requires -ndjson")
	ErrPrettyFormat = errors.New("-pretty requires -format json")
)

// Config is the complete configuration for the chidian tool.
type Config struct {
	// Input documents; empty means stdin, "-" also reads stdin.
	Files []string

	// Operation: exactly one is set.
	PathExpr     string // -p, path DSL expression
	JSONPathExpr string // -jsonpath, RFC 9535 expression
	MappingFile  string // -m, YAML mapping document

	Strict    bool
	KeepEmpty bool

	Format codec.Format
	Pretty bool
	NDJSON bool
	Rate   float64 // documents per second for -ndjson, 0 = unlimited
	Debug  bool
}

// Validate checks cross-flag consistency and file existence.
func (c *Config) Validate() error {
	ops := 0
	for _, set := range []bool{c.PathExpr != "", c.JSONPathExpr != "", c.MappingFile != ""} {
		if set {
			ops++
		}
	}
	if ops == 0 {
		return ErrNoOperation
	}
	if ops > 1 {
		return ErrManyOps
	}

	if c.MappingFile != "" {
		if _, err := os.Stat(c.MappingFile); err != nil {
			return fmt.Errorf("mapping file %s not found: %w", c.MappingFile, err)
		}
	}
	for _, file := range c.Files {
		if file == "-" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}

	if c.Rate > 0 && !c.NDJSON {
		return ErrRateWithout
	}
	if c.Pretty && c.Format != codec.JSON {
		return ErrPrettyFormat
	}
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		pathExpr     = fs.String("p", "", "Path DSL expression to evaluate against each document")
		jsonPathExpr = fs.String("jsonpath", "", "JSONPath expression to evaluate against each document")
		mappingFile  = fs.String("m", "", "YAML mapping document to run against each document")
		strict       = fs.Bool("strict", false, "Fail on missing keys and type mismatches")
		keepEmpty    = fs.Bool("keep-empty", false, "Disable emptiness pruning of mapping output")
		format       = fs.String("format", "json", "Input and output format: json or yaml")
		pretty       = fs.Bool("pretty", false, "Pretty-print JSON output")
		ndjson       = fs.Bool("ndjson", false, "Treat input as newline-delimited JSON, one document per line")
		rateLimit    = fs.Float64("rate", 0, "Documents per second for -ndjson (0 for unlimited)")
		debug        = fs.Bool("debug", false, "Dump decoded documents and intermediate trees to stderr")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	parsedFormat, err := codec.ParseFormat(*format)
	if err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	config := &Config{
		Files:        fs.Args(),
		PathExpr:     *pathExpr,
		JSONPathExpr: *jsonPathExpr,
		MappingFile:  *mappingFile,
		Strict:       *strict,
		KeepEmpty:    *keepEmpty,
		Format:       parsedFormat,
		Pretty:       *pretty,
		NDJSON:       *ndjson,
		Rate:         *rateLimit,
		Debug:        *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `chidian - query and reshape JSON-like documents

Usage: chidian [options] [file ...]

Reads documents from the given files, or stdin when none are given
("-" also reads stdin).

Options:
  -p EXPR           Path DSL expression to evaluate against each document
  -jsonpath EXPR    JSONPath (RFC 9535) expression to evaluate instead
  -m FILE           YAML mapping document to run against each document
  -strict           Fail on missing keys and type mismatches
  -keep-empty       Disable emptiness pruning of mapping output
  -format FORMAT    Input and output format: json or yaml (default: json)
  -pretty           Pretty-print JSON output
  -ndjson           Treat input as newline-delimited JSON
  -rate N           Documents per second for -ndjson (0 for unlimited)
  -debug            Dump decoded documents and intermediate trees to stderr
  -h, -help         Show this help message

Examples:
  chidian -p 'items[*].id' data.json        # evaluate a path expression
  chidian -jsonpath '$.items[0]' data.json  # evaluate a JSONPath
  chidian -m mapping.yaml data.json         # run a mapping pipeline
  cat stream.ndjson | chidian -ndjson -rate 10 -m mapping.yaml
  chidian -p 'patient.name' -format yaml record.yaml`
}
