package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/server"
	"github.com/reoring/goform/source"
	"github.com/reoring/goform/tui"
)

var stdout io.Writer = os.Stdout

func writeJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func initCmd(args []string) error {
	var c commonFlags
	var format, out string
	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	c.add(fs)
	fs.StringVar(&format, "format", "yaml", "output format (yaml, json)")
	fs.StringVarP(&out, "output", "o", "", "write to FILE instead of stdout")
	e, err := setup(fs, &c, args, true)
	if err != nil {
		return err
	}
	f, err := source.ParseFormat(format)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	b, err := source.EncodeData(goform.ComputeInitialData(e.schema), f)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = stdout.Write(b)
		return err
	}
	return os.WriteFile(out, b, 0o644)
}

func renderCmd(args []string) error {
	var c commonFlags
	var dataPath string
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	c.add(fs)
	fs.StringVar(&dataPath, "data", "", "data file (default: initial data)")
	e, err := setup(fs, &c, args, true)
	if err != nil {
		return err
	}
	data, err := e.loadData(dataPath)
	if err != nil {
		return err
	}
	view := e.form().Render(goform.Props{Schema: e.schema, Data: data})
	view.Focus()
	return writeJSON(view)
}

func checkCmd(args []string) error {
	var c commonFlags
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	c.add(fs)
	e, err := setup(fs, &c, args, true)
	if err != nil {
		return err
	}
	iss := e.form().Check(e.schema)
	for _, it := range iss {
		fmt.Fprintf(stdout, "%s: %s: %s\n", it.Path, it.Code, it.Message)
	}
	if len(iss) > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d problem(s) in %s", len(iss), fs.Arg(0))}
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}

func jsonSchemaCmd(args []string) error {
	var c commonFlags
	fs := pflag.NewFlagSet("jsonschema", pflag.ContinueOnError)
	c.add(fs)
	e, err := setup(fs, &c, args, true)
	if err != nil {
		return err
	}
	return writeJSON(goform.JSONSchema(e.schema))
}

func editCmd(args []string) error {
	var c commonFlags
	var dataPath string
	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	c.add(fs)
	fs.StringVar(&dataPath, "data", "", "data file to load and save (C-s)")
	e, err := setup(fs, &c, args, true)
	if err != nil {
		return err
	}
	data, err := e.loadData(dataPath)
	if err != nil {
		return err
	}
	opts := tui.Options{
		Title:  filepath.Base(fs.Arg(0)),
		Form:   e.form(),
		Schema: e.schema,
		Data:   data,
	}
	if dataPath != "" {
		format := source.FormatFromPath(dataPath)
		opts.Save = func(d goform.Data) error {
			b, err := source.EncodeData(d, format)
			if err != nil {
				return err
			}
			return os.WriteFile(dataPath, b, 0o644)
		}
	}
	final, err := tui.Run(tui.New(opts), tea.WithAltScreen())
	if err != nil {
		return err
	}
	if dataPath == "" {
		b, err := source.EncodeData(final.Data(), source.YAML)
		if err != nil {
			return err
		}
		_, err = stdout.Write(b)
		return err
	}
	if final.Dirty() {
		e.log.Warn("quit with unsaved changes", slog.String("path", dataPath))
	}
	return nil
}

func serveCmd(args []string) error {
	var c commonFlags
	var listen string
	var idle time.Duration
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	c.add(fs)
	fs.StringVar(&listen, "listen", "", "address to listen on (default: server.listen)")
	fs.DurationVar(&idle, "idle-timeout", -1, "drop idle sessions after this long (default: server.session_idle_timeout)")
	e, err := setup(fs, &c, args, false)
	if err != nil {
		return err
	}
	if listen == "" {
		listen = e.cfg.Server.Listen
	}
	if idle < 0 {
		idle = e.cfg.Server.SessionIdleTimeout
	}
	ctx, cancel := signalContext()
	defer cancel()
	srv := server.New(server.Options{Logger: e.log, IdleTimeout: idle})
	return srv.Run(ctx, listen)
}
