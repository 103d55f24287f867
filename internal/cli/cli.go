// Package cli wires command line options, logging and the map demo
// together for cmd/mapdemo.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/usuihiro/btree/internal/logging"
	"github.com/usuihiro/btree/internal/mapdemo"
)

// Options are the command line options. Every option has a default so the
// demo runs without arguments.
type Options struct {
	LogLevel  string `long:"log-level" default:"error" description:"Log level (debug, info, warn, error)"`
	LogFormat string `long:"log-format" default:"console" choice:"console" choice:"json" description:"Log encoding"`
	LogFile   string `long:"log-file" description:"Also write logs to this file, rotated by size"`
}

// Exit codes returned by Run.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
)

// Run parses args, runs the demo writing its report to stdout and logs to
// stderr, and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return ExitOK
		}
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	logger, err := logging.New(logging.Config{
		Level:  opts.LogLevel,
		Format: opts.LogFormat,
		File:   opts.LogFile,
	}, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return ExitUsage
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.String("log_level", opts.LogLevel))
	if err := mapdemo.Run(stdout, logger); err != nil {
		logger.Error("map demo failed", zap.Error(err))
		return ExitFailed
	}
	return ExitOK
}
