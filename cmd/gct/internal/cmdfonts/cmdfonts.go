// Package cmdfonts provides the fonts subcommand.
package cmdfonts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
	"github.com/rusq/gcodethumb/cmd/gct/internal/golang/base"
	"github.com/rusq/gcodethumb/fontmgr"
)

var CmdFonts = &base.Command{
	Run:       runFonts,
	UsageLine: "gct fonts",
	Short:     "lists the built-in fonts",
	FlagMask:  cfg.OmitAll,
	Long: `
Lists the built-in fonts, that can be set as the font name in the
configuration file.  A TrueType, OpenType or .fnt font file can be used
instead by setting the font name to the path of the file.

Outline fonts are measured at the default size.  Only the outline fonts
are scaled to the configured size, and only they can skip the symbols
missing from the font.
`,
}

func runFonts(ctx context.Context, cmd *base.Command, args []string) error {
	return printFonts(os.Stdout)
}

func printFonts(w io.Writer) error {
	data := pterm.TableData{{"Name", "Type", "Width", "Height"}}
	err := fontmgr.ListEmbedded(func(f fontmgr.Font, err error) error {
		if err != nil {
			slog.Warn("skipping font", "name", f.Name, "error", err)
			return nil
		}
		typ := "bitmap"
		if f.Outline {
			typ = "outline"
		}
		data = append(data, []string{f.Name, typ, strconv.Itoa(int(f.Width)), strconv.Itoa(int(f.Height))})
		return nil
	})
	if err != nil {
		return err
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
