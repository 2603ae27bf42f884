// Package cmdembed provides the embed subcommand, the slicer post-processing
// entry point.
package cmdembed

import (
	"context"
	"errors"

	"github.com/rusq/gcodethumb"
	"github.com/rusq/gcodethumb/cmd/gct/internal/bootstrap"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
	"github.com/rusq/gcodethumb/cmd/gct/internal/golang/base"
)

var CmdEmbed = &base.Command{
	Run:        runEmbed,
	UsageLine:  "gct embed [flags] <file.gcode>",
	Short:      "embeds the thumbnails into the G-code file",
	PrintFlags: true,
	Long: `
Embeds the thumbnails into the G-code file in place.

The file must contain the thumbnail generated by the slicer (PrusaSlicer,
OrcaSlicer or similar), at least as large as the configured minimum size.
The printer model is taken from the slicer metadata, unless it is set with
the -p flag.

Files for unsupported printers and files that already contain the
thumbnails are left unchanged.

Configure the slicer to call it as the post-processing script:

	/path/to/gct embed;
`,
}

func runEmbed(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) != 1 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("expected exactly one G-code file")
	}

	p, err := bootstrap.Processor(ctx)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}

	lg := cfg.Log.With("filename", args[0])
	if err := p.ProcessFile(ctx, args[0], cfg.Printer); err != nil {
		switch {
		case errors.Is(err, gcodethumb.ErrUnsupportedPrinter):
			lg.WarnContext(ctx, "file left unchanged", "error", err)
			return nil
		case errors.Is(err, gcodethumb.ErrAlreadyProcessed):
			lg.InfoContext(ctx, "file left unchanged", "reason", err)
			return nil
		case errors.Is(err, context.Canceled):
			base.SetExitStatus(base.SCancelled)
		default:
			base.SetExitStatus(base.SApplicationError)
		}
		return err
	}
	return nil
}
