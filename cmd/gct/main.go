package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/trace"
	"strings"

	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cmdembed"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cmdfonts"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cmdmodels"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cmdpreview"
	"github.com/rusq/gcodethumb/cmd/gct/internal/golang/base"
	"github.com/rusq/gcodethumb/cmd/gct/internal/golang/help"
)

func init() {
	base.GCTCommand.Commands = []*base.Command{
		cmdembed.CmdEmbed,
		cmdpreview.CmdPreview,
		cmdmodels.CmdModels,
		cmdfonts.CmdFonts,
	}
}

func main() {
	flag.Usage = base.Usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		base.Usage()
		// Usage terminates the program.
		return
	}
	base.CmdName = args[0]
	if args[0] == "help" {
		help.Help(os.Stdout, args[1:])
		return
	}

BigCmdLoop:
	for bigCmd := base.GCTCommand; ; {
		for _, cmd := range bigCmd.Commands {
			if cmd.Name() != args[0] {
				continue
			}
			if len(cmd.Commands) > 0 {
				bigCmd = cmd
				args = args[1:]
				if len(args) == 0 {
					help.PrintUsage(os.Stderr, bigCmd)
					base.SetExitStatus(base.SHelpRequested)
					base.Exit()
				}
				if args[0] == "help" {
					help.Help(os.Stdout, append(strings.Split(base.CmdName, " "), args[1:]...))
					return
				}
				base.CmdName += " " + args[0]
				continue BigCmdLoop
			}
			if !cmd.Runnable() {
				continue
			}
			if err := invoke(cmd, args); err != nil {
				if base.ExitStatus() == base.SNoError {
					base.SetExitStatus(base.SGenericError)
				}
				msg := fmt.Sprintf("%03[1]d (%[1]s): %[2]s.", base.ExitStatus(), err)
				slog.Error(msg)
			}
			base.Exit()
			return
		}
		helpArg := ""
		if i := strings.LastIndex(base.CmdName, " "); i >= 0 {
			helpArg = " " + base.CmdName[:i]
		}
		fmt.Fprintf(os.Stderr, "gct %s: unknown command\nRun 'gct help%s' for usage.\n", base.CmdName, helpArg)
		base.SetExitStatus(base.SInvalidParameters)
		base.Exit()
	}
}

func init() {
	base.Usage = mainUsage
}

func mainUsage() {
	help.PrintUsage(os.Stderr, base.GCTCommand)
	os.Exit(2)
}

func invoke(cmd *base.Command, args []string) error {
	if cmd.CustomFlags {
		args = args[1:]
	} else {
		var err error
		args, err = parseFlags(cmd, args)
		if err != nil {
			return err
		}
	}

	// maybe start trace
	if err := initTrace(cfg.TraceFile); err != nil {
		base.SetExitStatus(base.SGenericError)
		return fmt.Errorf("failed to start trace: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trapSigInfo()

	ctx, task := trace.NewTask(ctx, "command")
	defer task.End()

	// initialise default logging.
	if lg, err := initLog(cfg.LogFile, cfg.JSONHandler, cfg.Verbose); err != nil {
		return err
	} else {
		cfg.Log = lg.With("command", cmd.Name())
	}

	trace.Log(ctx, "command", fmt.Sprint("Running ", cmd.Name(), " command"))
	return cmd.Run(ctx, cmd, args)
}

func parseFlags(cmd *base.Command, args []string) ([]string, error) {
	cfg.SetBaseFlags(&cmd.Flag, cmd.FlagMask)
	cmd.Flag.Usage = func() { cmd.Usage() }
	if err := cmd.Flag.Parse(args[1:]); err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return nil, err
	}
	return cmd.Flag.Args(), nil
}

// initTrace initialises the tracing.  If the filename is not empty, the file
// will be opened, trace will write to that file.  The trace is stopped at
// exit.
func initTrace(filename string) error {
	if filename == "" {
		return nil
	}

	slog.Debug("trace will be written to", "filename", filename)

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		f.Close()
		slog.Warn("failed to start trace", "err", err)
		return nil
	}

	stop := func() {
		trace.Stop()
		if err := f.Close(); err != nil {
			slog.Warn("failed to close trace file", "filename", filename, "error", err)
		}
	}
	base.AtExit(stop)
	return nil
}

// initLog initialises the logging and returns the Logger.  If the filename
// is not empty, the file will be opened, and the logger output will be
// switched to that file.  The file is closed at exit.
func initLog(filename string, jsonHandler bool, verbose bool) (*slog.Logger, error) {
	if verbose {
		cfg.SetDebugLevel()
	}
	var opts = &slog.HandlerOptions{
		Level: iftrue(verbose, slog.LevelDebug, slog.LevelInfo),
	}
	if jsonHandler {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	}
	if filename != "" {
		slog.Debug("log messages will be written to file", "filename", filename)
		lf, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
		if err != nil {
			return slog.Default(), fmt.Errorf("failed to create the log file: %w", err)
		}
		log.SetOutput(lf) // redirect the standard log to the file just in case, panics will be logged there.

		var h slog.Handler = slog.NewTextHandler(lf, opts)
		if jsonHandler {
			h = slog.NewJSONHandler(lf, opts)
		}

		sl := slog.New(h)
		slog.SetDefault(sl)
		base.AtExit(func() {
			if err := lf.Close(); err != nil {
				slog.Warn("failed to close the log file", "err", err)
			}
		})
	}

	return slog.Default(), nil
}

func iftrue[T any](cond bool, t T, f T) T {
	if cond {
		return t
	}
	return f
}
