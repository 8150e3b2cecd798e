package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/theory/jsonpath"

	"github.com/ericpan64/chidian"
	"github.com/ericpan64/chidian/internal/codec"
	"github.com/ericpan64/chidian/internal/config"
	"github.com/ericpan64/chidian/internal/exit"
	"github.com/ericpan64/chidian/internal/parser"
	"github.com/ericpan64/chidian/internal/ratelimit"
)

type app struct {
	cfg       *config.Config
	transform chidian.TransformFunc // set for -m
	limiter   *ratelimit.Limiter
	stdout    io.Writer
	stderr    io.Writer
}

// newApp validates the configured operation up front so expression and
// mapping syntax errors surface before any document is read.
func newApp(cfg *config.Config) (*app, *exit.Result) {
	a := &app{
		cfg:     cfg,
		limiter: ratelimit.New(cfg.Rate),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	switch {
	case cfg.PathExpr != "":
		if _, err := parser.Parse(cfg.PathExpr); err != nil {
			return nil, exit.Parsef("Error: %v\n", err)
		}
	case cfg.JSONPathExpr != "":
		if _, err := jsonpath.Parse(cfg.JSONPathExpr); err != nil {
			return nil, exit.Parsef("Error: invalid JSONPath %s: %v\n", cfg.JSONPathExpr, err)
		}
	case cfg.MappingFile != "":
		f, err := os.Open(cfg.MappingFile)
		if err != nil {
			return nil, exit.Errorf("Error: %v\n", err)
		}
		defer f.Close()

		transform, err := chidian.CompileMapping(f)
		if err != nil {
			return nil, exit.Parsef("Error: %v\n", err)
		}
		a.transform = transform
	}

	return a, nil
}

func (a *app) run(ctx context.Context) int {
	sources := a.cfg.Files
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	for _, name := range sources {
		if result := a.runSource(ctx, name); result != nil {
			result.Print()
			return result.ExitCode
		}
	}
	return exit.CodeOK
}

func (a *app) runSource(ctx context.Context, name string) *exit.Result {
	var in io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return exit.Errorf("Error: %v\n", err)
		}
		defer f.Close()
		in = f
	}

	if a.cfg.NDJSON {
		return a.runStream(ctx, in)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return exit.Errorf("Error: reading %s: %v\n", name, err)
	}
	return a.processDocument(data)
}

// runStream handles newline-delimited input, one document per line, paced by
// the configured rate limit.
func (a *app) runStream(ctx context.Context, in io.Reader) *exit.Result {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return exit.Errorf("Error: %v\n", err)
		}
		if result := a.processDocument(line); result != nil {
			return result
		}
	}
	if err := scanner.Err(); err != nil {
		return exit.Errorf("Error: reading stream: %v\n", err)
	}
	return nil
}

func (a *app) processDocument(data []byte) *exit.Result {
	doc, err := codec.Decode(data, a.cfg.Format)
	if err != nil {
		return exit.Errorf("Error: %v\n", err)
	}
	if a.cfg.Debug {
		fmt.Fprintln(a.stderr, "--- input")
		spew.Fdump(a.stderr, doc)
	}

	var result any
	switch {
	case a.cfg.PathExpr != "":
		var opts []chidian.Option
		if a.cfg.Strict {
			opts = append(opts, chidian.Strict())
		}
		result, err = chidian.Get(doc, a.cfg.PathExpr, opts...)
	case a.cfg.JSONPathExpr != "":
		result, err = chidian.GetJSONPath(doc, a.cfg.JSONPathExpr)
	default:
		result, err = chidian.Run(doc, a.transform, chidian.RunConfig{
			Strict:    a.cfg.Strict,
			KeepEmpty: a.cfg.KeepEmpty,
		})
	}
	if err != nil {
		return a.classify(err)
	}

	if a.cfg.Debug {
		fmt.Fprintln(a.stderr, "--- output")
		spew.Fdump(a.stderr, result)
	}
	if err := codec.Encode(a.stdout, result, a.cfg.Format, a.cfg.Pretty); err != nil {
		return exit.Errorf("Error: %v\n", err)
	}
	return nil
}

// classify maps evaluation failures to the exit-code taxonomy.
func (a *app) classify(err error) *exit.Result {
	switch {
	case errors.Is(err, chidian.ErrStrictViolation):
		return exit.Strictf("Error: %v\n", err)
	case a.cfg.Strict && (errors.Is(err, chidian.ErrKeyNotFound) || errors.Is(err, chidian.ErrIndexOutOfRange)):
		return exit.Strictf("Error: %v\n", err)
	case errors.Is(err, chidian.ErrInvalidPath):
		return exit.Parsef("Error: %v\n", err)
	default:
		return exit.Errorf("Error: %v\n", err)
	}
}
