// Package base defines shared basic pieces of the gct command, in particular
// the Command structure and the exit handling.
package base

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
)

// A Command is an implementation of a gct command, like gct embed.
type Command struct {
	// Run runs the command.  The args are the arguments after the command
	// name.
	Run func(ctx context.Context, cmd *Command, args []string) error

	// UsageLine is the one-line usage message.  The words between "gct" and
	// the first flag or argument in the line are taken to be the command
	// name.
	UsageLine string

	// Short is the short description shown in the 'gct help' output.
	Short string

	// Long is the long message shown in the 'gct help <this-command>' output.
	Long string

	// Flag is a set of flags specific to this command.
	Flag flag.FlagSet

	// FlagMask selects the base flags that the command does not accept.
	FlagMask cfg.FlagMask

	// CustomFlags indicates that the command will do its own flag parsing.
	CustomFlags bool

	// PrintFlags makes the help output list the flags.
	PrintFlags bool

	// Commands lists the available commands and help topics.  The order
	// here is the order in which they are printed by 'gct help'.
	Commands []*Command
}

var GCTCommand = &Command{
	UsageLine: "gct",
	Long: `Gct embeds the thumbnails with the print time, height, filament weight and
cost into the G-code files for Elegoo Neptune printers.

Use it as the post-processing script in the slicer.`,
}

// LongName returns the command's long name: all the words in the usage line
// between "gct" and a flag or argument.
func (c *Command) LongName() string {
	name := c.UsageLine
	if i := strings.Index(name, " ["); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, " <"); i >= 0 {
		name = name[:i]
	}
	if name == "gct" {
		return ""
	}
	return strings.TrimPrefix(name, "gct ")
}

// Name returns the command's short name: the last word in the usage line
// before a flag or argument.
func (c *Command) Name() string {
	name := c.LongName()
	if i := strings.LastIndex(name, " "); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (c *Command) Usage() {
	fmt.Fprintf(os.Stderr, "usage: %s\n", c.UsageLine)
	fmt.Fprintf(os.Stderr, "Run 'gct help %s' for details.\n", c.LongName())
	SetExitStatus(SInvalidParameters)
	Exit()
}

// Runnable reports whether the command can be run; otherwise it is a
// documentation pseudo-command.
func (c *Command) Runnable() bool {
	return c.Run != nil
}

// Usage is the usage-reporting function, filled in by package main.
var Usage func()

// CmdName is the name of the running command.
var CmdName string

var (
	atExitFuncs []func()

	exitMu     sync.Mutex
	exitStatus = SNoError
)

func AtExit(f func()) {
	atExitFuncs = append(atExitFuncs, f)
}

// Exit runs the exit functions in the reverse order and exits with the exit
// status.
func Exit() {
	for i := len(atExitFuncs) - 1; i >= 0; i-- {
		atExitFuncs[i]()
	}
	os.Exit(int(ExitStatus()))
}

// SetExitStatus sets the exit status, if it is higher than the current one.
func SetExitStatus(n StatusCode) {
	exitMu.Lock()
	if exitStatus < n {
		exitStatus = n
	}
	exitMu.Unlock()
}

func ExitStatus() StatusCode {
	exitMu.Lock()
	defer exitMu.Unlock()
	return exitStatus
}
