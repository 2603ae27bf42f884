// Package cmdmodels provides the models subcommand.
package cmdmodels

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/rusq/gcodethumb/cmd/gct/internal/bootstrap"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
	"github.com/rusq/gcodethumb/cmd/gct/internal/golang/base"
	"github.com/rusq/gcodethumb/printers"
	"github.com/rusq/gcodethumb/thumb"
)

var CmdModels = &base.Command{
	Run:       runModels,
	UsageLine: "gct models",
	Short:     "lists the supported printer models",
	FlagMask:  cfg.OmitAll,
	Long: `
Lists the supported printer models, their thumbnail format family and the
thumbnail sizes embedded for them, as set in the configuration.
`,
}

func runModels(ctx context.Context, cmd *base.Command, args []string) error {
	c, err := bootstrap.Config(ctx)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	cat := printers.NewCatalog(c.Models())
	return printModels(os.Stdout, cat.Models(), c.Layout())
}

func printModels(w io.Writer, models []printers.Model, layout thumb.Layout) error {
	data := pterm.TableData{{"Model", "Family", "Thumbnails"}}
	for _, m := range models {
		data = append(data, []string{m.Name, m.Family.String(), sizes(layout[m.Family])})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func sizes(ts []thumb.Target) string {
	var ss = make([]string, 0, len(ts))
	for _, t := range ts {
		ss = append(ss, fmt.Sprintf("%dx%d", t.Width, t.Height))
	}
	return strings.Join(ss, ", ")
}
