package gcodethumb

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/rusq/gcodethumb/bitmap"
	"github.com/rusq/gcodethumb/config"
	"github.com/rusq/gcodethumb/gcode"
	"github.com/rusq/gcodethumb/thumb"
)

// Canvas geometry of the annotated thumbnail.
const (
	canvasSize = 900
	thumbBox   = 600
	notAvail   = "N/A"
)

var (
	thumbOrigin = image.Pt(150, 160)
	panelRect   = image.Rect(140, 150, 760, 770)
	bandRects   = []image.Rectangle{
		image.Rect(0, 10, canvasSize, 130),
		image.Rect(0, 780, canvasSize, 890),
	}
)

type caption struct {
	box   image.Rectangle
	align bitmap.Align
}

// captions are in the order of the captionLines output.
var captions = [4]caption{
	{image.Rect(30, 20, 430, 120), bitmap.AlignLeft},
	{image.Rect(470, 20, 870, 120), bitmap.AlignRight},
	{image.Rect(30, 790, 430, 890), bitmap.AlignLeft},
	{image.Rect(470, 790, 870, 890), bitmap.AlignRight},
}

// captionLines returns the print time, height, filament weight and cost
// lines.
func captionLines(sd gcode.SliceData, currency string) [4]string {
	lines := [4]string{"⧖ " + notAvail, "⭱ " + notAvail, "⭗ " + notAvail, "⛁ " + notAvail}
	if sd.HasPrintTime() {
		mins := int64(sd.PrintTime.Minutes())
		lines[0] = fmt.Sprintf("⧖ %d:%02dh", mins/60, mins%60)
	}
	if sd.HasHeight() {
		lines[1] = "⭱ " + formatFloat(math.Round(sd.Height*100)/100) + "mm"
	}
	if sd.HasFilamentGrams() {
		lines[2] = fmt.Sprintf("⭗ %.0fg", math.RoundToEven(sd.FilamentGrams))
	}
	if sd.HasFilamentCost() {
		lines[3] = fmt.Sprintf("⛁ %.2f%s", sd.FilamentCost, currency)
	}
	return lines
}

// formatFloat formats the shortest representation, always with the
// fraction, i.e. "12.0".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// artwork renders the annotated images for the family.
func (p *Processor) artwork(src image.Image, sd gcode.SliceData, f thumb.Family) (thumb.Artwork, error) {
	bg, err := p.background(f)
	if err != nil {
		return thumb.Artwork{}, err
	}
	colors := p.cfg.Colors()
	scaled := bitmap.ScaleToFit(src, thumbBox, thumbBox).Image()
	lines := captionLines(sd, p.cfg.Currency)

	fg := colors.TextLight
	if bitmap.IsLight(bg) {
		fg = colors.TextDark
	}
	return thumb.Artwork{
		Thumbnail: src,
		Overlay:   p.annotate(scaled, lines, nil, colors.TextLight),
		Framed:    p.annotate(scaled, lines, bg, fg),
	}, nil
}

func (p *Processor) annotate(scaled image.Image, lines [4]string, bg image.Image, fg color.Color) *image.NRGBA {
	opts := []bitmap.ComposerOption{bitmap.WithFace(p.face), bitmap.WithTextColor(fg)}
	if bg != nil {
		opts = append(opts, bitmap.WithBackground(bg))
	}
	c := bitmap.NewComposer(canvasSize, canvasSize, opts...)
	c.DrawImage(scaled, thumbOrigin)
	for i, l := range lines {
		c.DrawText(l, captions[i].box, captions[i].align)
	}
	return c.Image()
}

// background returns the background of the family: the configured image or
// the procedural backdrop of the family theme.
func (p *Processor) background(f thumb.Family) (image.Image, error) {
	p.bgMu.Lock()
	defer p.bgMu.Unlock()
	if bg, ok := p.backgrounds[f]; ok {
		return bg, nil
	}
	fam, ok := p.cfg.Family(f)
	if !ok {
		return nil, fmt.Errorf("%w: family %s", ErrUnsupportedPrinter, f)
	}
	var bg image.Image
	if fam.Background != "" {
		img, err := bitmap.Open(fam.Background)
		if err != nil {
			return nil, fmt.Errorf("error loading background for %s: %w", f, err)
		}
		bg = img
	} else {
		bg = backdrop(fam.Theme, p.cfg.Colors()).Render(canvasSize, canvasSize)
	}
	p.backgrounds[f] = bg
	return bg, nil
}

func backdrop(theme string, cs config.Colors) bitmap.Backdrop {
	bd := bitmap.Backdrop{
		Base:      cs.DarkBase,
		Band:      cs.DarkBand,
		Panel:     cs.DarkPanel,
		PanelRect: panelRect,
		BandRects: bandRects,
	}
	if theme == config.ThemeLight {
		bd.Base, bd.Band, bd.Panel = cs.LightBase, cs.LightBand, cs.LightPanel
	}
	return bd
}
