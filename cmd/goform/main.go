// goform works with form schemas from the command line.
//
//	goform init SCHEMA               print the initial data object
//	goform render SCHEMA             print the rendered element tree as JSON
//	goform check SCHEMA              report schema problems
//	goform jsonschema SCHEMA         print the JSON Schema of the data object
//	goform edit SCHEMA               edit data interactively
//	goform serve                     serve form sessions over HTTP
//
// Schemas and data are JSON, JSONC or YAML, chosen by file extension.
// Configuration comes from --config or GOFORM_CONFIG.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/internal/config"
	"github.com/reoring/goform/source"
	_ "github.com/reoring/goform/widget"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// exitError carries a specific exit status. A nil err exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usage() {
	fmt.Fprint(os.Stderr, `goform renders declarative form schemas.

Usage:
  goform init SCHEMA [--format yaml|json] [-o FILE]
  goform render SCHEMA [--data FILE]
  goform check SCHEMA
  goform jsonschema SCHEMA
  goform edit SCHEMA [--data FILE]
  goform serve [--listen ADDR]

Every command accepts --config FILE and --lang en|ja.
`)
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return &exitError{code: 2}
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "init":
		return initCmd(rest)
	case "render":
		return renderCmd(rest)
	case "check":
		return checkCmd(rest)
	case "jsonschema":
		return jsonSchemaCmd(rest)
	case "edit":
		return editCmd(rest)
	case "serve":
		return serveCmd(rest)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return &exitError{code: 2, err: fmt.Errorf("unknown command %q", sub)}
	}
}

// env is the state shared by all commands once flags are parsed.
type env struct {
	cfg    *config.Config
	log    *slog.Logger
	schema []goform.Schema
}

type commonFlags struct {
	configPath string
	lang       string
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvVar+")")
	fs.StringVar(&c.lang, "lang", "", "message language (en, ja)")
}

// setup parses fs, loads configuration and, when wantSchema is set, the
// schema named by the single positional argument.
func setup(fs *pflag.FlagSet, c *commonFlags, args []string, wantSchema bool) (*env, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, &exitError{code: 0}
		}
		return nil, &exitError{code: 2, err: err}
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.lang != "" {
		cfg.Language = c.lang
		if err := cfg.Validate(); err != nil {
			return nil, &exitError{code: 2, err: err}
		}
	}
	i18n.SetLanguage(cfg.Language)
	e := &env{cfg: cfg, log: cfg.Log.Logger()}
	slog.SetDefault(e.log)

	if !wantSchema {
		if fs.NArg() > 0 {
			return nil, &exitError{code: 2, err: fmt.Errorf("unexpected argument: %s", fs.Arg(0))}
		}
		return e, nil
	}
	if fs.NArg() != 1 {
		return nil, &exitError{code: 2, err: errors.New("expected exactly one SCHEMA file")}
	}
	e.schema, err = source.ReadSchemaFile(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	e.log.Debug("schema loaded", slog.String("path", fs.Arg(0)), slog.Int("nodes", len(e.schema)))
	return e, nil
}

func (e *env) form() *goform.Form {
	return goform.New(goform.Options{Logger: e.log})
}

// loadData reads path, or synthesizes the initial data object when path is
// empty or does not exist yet.
func (e *env) loadData(path string) (goform.Data, error) {
	if path == "" {
		return goform.ComputeInitialData(e.schema), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		e.log.Info("data file missing, starting from defaults", slog.String("path", path))
		return goform.ComputeInitialData(e.schema), nil
	}
	return source.ReadDataFile(path)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
