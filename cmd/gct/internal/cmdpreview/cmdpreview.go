// Package cmdpreview provides the preview subcommand.
package cmdpreview

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"

	"github.com/rusq/gcodethumb/bitmap"
	"github.com/rusq/gcodethumb/cmd/gct/internal/bootstrap"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
	"github.com/rusq/gcodethumb/cmd/gct/internal/golang/base"
)

var CmdPreview = &base.Command{
	Run:        runPreview,
	UsageLine:  "gct preview [flags] <file.gcode>",
	Short:      "renders the thumbnails without modifying the file",
	FlagMask:   cfg.OmitDryRunFlag,
	PrintFlags: true,
	Long: `
Renders the annotated thumbnails for the G-code file and saves them as PNG
files to the output directory, together with the generated G-code prefix.
The G-code file is not modified.

Scaled images are named after the hash of their contents, so that repeated
runs with unchanged settings produce the same files.
`,
}

var outputDir string

func init() {
	CmdPreview.Flag.StringVar(&outputDir, "o", ".", "output `directory`")
}

func runPreview(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) != 1 {
		base.SetExitStatus(base.SInvalidParameters)
		return errors.New("expected exactly one G-code file")
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	p, err := bootstrap.Processor(ctx)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	res, err := p.Render(ctx, src, cfg.Printer)
	if err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	lg := cfg.Log.With("model", res.Model, "family", res.Family, "job_id", res.JobID)

	files := []struct {
		suffix string
		img    image.Image
	}{
		{"overlay", res.Artwork.Overlay},
		{"framed", res.Artwork.Framed},
	}
	for _, t := range p.Targets(res.Family) {
		bmp := bitmap.ScaleToFit(res.Artwork.Framed, t.Width, t.Height)
		files = append(files, struct {
			suffix string
			img    image.Image
		}{fmt.Sprintf("%dx%d.%s", bmp.Width(), bmp.Height(), contentHash(bmp.Image().Pix)), bmp.Image()})
	}
	for _, f := range files {
		fn := filepath.Join(outputDir, name+"."+f.suffix+".png")
		if err := imaging.Save(f.img, fn); err != nil {
			base.SetExitStatus(base.SApplicationError)
			return fmt.Errorf("error saving %s: %w", fn, err)
		}
		lg.InfoContext(ctx, "preview saved", "filename", fn)
	}

	fn := filepath.Join(outputDir, name+".prefix.gcode")
	if err := os.WriteFile(fn, []byte(res.Set.String()), 0o644); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	lg.InfoContext(ctx, "prefix saved", "filename", fn, "size", res.Set.Len())
	return nil
}

// contentHash returns the first 16 hex digits of the xxHash64 of data.
func contentHash(data []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64(data))
	return hex.EncodeToString(b[:])
}
