// Package cfg contains common configuration variables.
package cfg

import (
	"flag"
	"log/slog"

	"github.com/rusq/osenv/v2"
)

var (
	ConfigFile  string = osenv.Value("GCT_CONFIG", "")
	TraceFile   string = osenv.Value("TRACE_FILE", "")
	LogFile     string = osenv.Value("LOG_FILE", "")
	JSONHandler bool   = osenv.Value("JSON_LOG", false)
	Verbose     bool   = osenv.Value("DEBUG", false)

	Printer string = osenv.Value("GCT_PRINTER", "")
	MinSize int
	DryRun  bool = osenv.Value("DRY_RUN", false)

	Log *slog.Logger = slog.Default()
)

type FlagMask uint16

const (
	DefaultFlags    FlagMask = 0
	OmitPrinterFlag FlagMask = 1 << (iota - 1)
	OmitDryRunFlag

	OmitAll = OmitPrinterFlag | OmitDryRunFlag
)

// SetBaseFlags sets base flags.
func SetBaseFlags(fs *flag.FlagSet, mask FlagMask) {
	fs.StringVar(&ConfigFile, "config", ConfigFile, "configuration `file`, if not specified, searched in the XDG config directories")
	fs.StringVar(&TraceFile, "trace", TraceFile, "trace `filename`")
	fs.StringVar(&LogFile, "log", LogFile, "log `file`, if not specified, messages are printed to STDERR")
	fs.BoolVar(&JSONHandler, "log-json", JSONHandler, "log in JSON format")
	fs.BoolVar(&Verbose, "v", Verbose, "verbose messages")

	if mask&OmitPrinterFlag == 0 {
		fs.StringVar(&Printer, "p", Printer, "printer `model`, overrides the model from the G-code metadata if known")
		fs.IntVar(&MinSize, "min-size", 0, "minimum source thumbnail `size`, 0 uses the configured value")
	}
	if mask&OmitDryRunFlag == 0 {
		fs.BoolVar(&DryRun, "dry", DryRun, "dry run, do not modify the file")
	}
}

// SetDebugLevel enables the debug messages of the default logger.
func SetDebugLevel() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}
