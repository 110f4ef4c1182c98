// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command netcheck runs design rule checks on TOML net descriptions.
//
//	netcheck [--color auto|on|off] [--strict] [--quiet] design.toml...
//
// It exits with status 1 if any file fails to load or if errors are found,
// or warnings with --strict.
//
package main

import (
	"io"
	"log"
	"os"

	"github.com/db47h/drc/internal/netfile"
	"github.com/db47h/drc/internal/report"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("design rule check failed")

type options struct {
	color  string
	strict bool
	quiet  bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "netcheck design.toml...",
		Short:         "Check nets for short circuits and floating signals",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			colorize, err := useColor(opts.color, stdout)
			if err != nil {
				return err
			}
			return run(stdout, args, opts, colorize)
		},
	}
	cmd.Flags().StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")
	return cmd
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && isatty.IsTerminal(f.Fd()), nil
	}
	return false, errors.Errorf("invalid --color value %q", mode)
}

func run(w io.Writer, files []string, opts options, colorize bool) error {
	failed := false
	for _, path := range files {
		d, err := netfile.Load(path)
		if err != nil {
			log.Print(err)
			failed = true
			continue
		}
		fs := report.Check(d)
		errs, warns := report.Summary(fs)
		if opts.quiet {
			fs = onlyErrors(fs)
		}
		if err := report.Write(w, fs, colorize); err != nil {
			return err
		}
		if !opts.quiet {
			log.Printf("%s: %d nets, %d errors, %d warnings", path, len(d.Nets), errs, warns)
		}
		if errs > 0 || opts.strict && warns > 0 {
			failed = true
		}
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

func onlyErrors(fs []report.Finding) []report.Finding {
	var out []report.Finding
	for _, f := range fs {
		if f.Severity == report.Error {
			out = append(out, f)
		}
	}
	return out
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("netcheck: ")
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if err != errCheckFailed {
			log.Print(err)
		}
		os.Exit(1)
	}
}
