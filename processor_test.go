package gcodethumb

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/gcodethumb/config"
	"github.com/rusq/gcodethumb/gcode"
	"github.com/rusq/gcodethumb/thumb"
)

var stubPacker = thumb.PackerFunc(func(_ []uint16, w, h int) ([]byte, error) {
	return fmt.Appendf(nil, "%dx%d", w, h), nil
})

func testPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// testGCode returns the G-code as PrusaSlicer writes it.
func testGCode(t *testing.T, size int, model string, extra ...string) []byte {
	t.Helper()
	data := testPNG(t, size, size)
	var sb strings.Builder
	sb.WriteString("; generated by PrusaSlicer 2.6.0\n\n")
	fmt.Fprintf(&sb, "; thumbnail begin %dx%d %d\n", size, size, len(data))
	for i := 0; i < len(data); i += 78 {
		sb.WriteString("; " + data[i:min(i+78, len(data))] + "\n")
	}
	sb.WriteString("; thumbnail end\n\n")
	sb.WriteString("G28\nG1 X10 Y10\n")
	sb.WriteString("; filament used [g] = 12.5\n")
	sb.WriteString("; total filament cost = 0.37\n")
	sb.WriteString("; estimated printing time (normal mode) = 1h 23m 10s\n")
	sb.WriteString("; max_z_height: 20.40\n")
	for _, l := range extra {
		sb.WriteString(l + "\n")
	}
	if model != "" {
		sb.WriteString("; printer_model = " + model + "\n")
	}
	return []byte(sb.String())
}

func newTestProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := New(nil, append([]Option{WithPacker(stubPacker)}, opts...)...)
	require.NoError(t, err)
	return p
}

func TestProcessor_Transform(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		requested  string
		wantFamily thumb.Family
		wantPrefix string
	}{
		{"legacy", "NEPTUNE2", "", thumb.FamilyLegacy, ";simage:"},
		{"packed", "Elegoo Neptune 4 Pro", "", thumb.FamilyPacked, "\r;;gimage:200x200\r;"},
		{"jpeg", "ORANGESTORMGIGA", "", thumb.FamilyJPEG, ";gimage:"},
		{"requested model wins", "NEPTUNE4", "NEPTUNE2S", thumb.FamilyLegacy, ";simage:"},
		{"unknown requested model is ignored", "NEPTUNE4", "NEPTUNE99", thumb.FamilyPacked, "\r;;gimage:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t)
			src := testGCode(t, 300, tt.model)
			res, err := p.Render(context.Background(), src, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFamily, res.Family)

			out := string(res.Output)
			assert.True(t, strings.HasPrefix(out, tt.wantPrefix), "prefix: %q", out[:min(len(out), 40)])
			assert.True(t, strings.HasPrefix(out, res.Set.String()))
			assert.True(t, strings.HasSuffix(out, "; printer_model = "+tt.model+"\n"))
			assert.Contains(t, out, "; orig_thumbnail begin 300x300 ")
			assert.Contains(t, out, "; generated by CensoredSlicer 2.6.0")
			assert.NotContains(t, out, "PrusaSlicer")
			assert.Contains(t, out, "; thumbnail begin 32 32 ")
			assert.Contains(t, out, "; thumbnail begin 300 300 ")
			assert.Contains(t, out, "Cura_SteamEngine X.X")
			assert.True(t, gcode.Parse(res.Output).Processed())
			assert.Equal(t, StateComposed, p.current.Load().State())

			// second run is a no-op.
			_, err = p.Transform(context.Background(), res.Output, tt.requested)
			assert.ErrorIs(t, err, ErrAlreadyProcessed)
			assert.Equal(t, StateSkipped, p.current.Load().State())
		})
	}
}

func TestProcessor_Transform_colpic(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	out, err := p.Transform(context.Background(), testGCode(t, 300, "NEPTUNE3PRO"), "")
	require.NoError(t, err)
	s := string(out)
	require.True(t, strings.HasPrefix(s, ";gimage:"))
	assert.NotContains(t, s, "\x00")
	for _, l := range strings.Split(s[:strings.Index(s, "; thumbnail begin 32 32")], "\r") {
		assert.LessOrEqual(t, len(l), len(";;gimage:")+1015)
	}
}

func TestProcessor_Transform_errors(t *testing.T) {
	tests := []struct {
		name      string
		src       []byte
		wantErr   error
		wantState string
	}{
		{"unsupported printer", testGCode(t, 300, "Prusa MK4"), ErrUnsupportedPrinter, StateSkipped},
		{"no printer", testGCode(t, 300, ""), ErrUnsupportedPrinter, StateSkipped},
		{"small thumbnail", testGCode(t, 64, "NEPTUNE4"), ErrThumbnailNotFound, StateFailed},
		{"no thumbnail", []byte("G28\n; printer_model = NEPTUNE4\n"), ErrThumbnailNotFound, StateFailed},
		{"malformed metadata", bytes.Replace(testGCode(t, 300, "NEPTUNE4"), []byte("; max_z_height: 20.40"), []byte("; max_z_height: high"), 1), ErrMalformedMetadata, StateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t)
			out, err := p.Transform(context.Background(), tt.src, "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)
			job := p.current.Load()
			assert.Equal(t, tt.wantState, job.State())
			assert.ErrorIs(t, job.Err(), tt.wantErr)
		})
	}
}

func TestProcessor_Transform_cancelled(t *testing.T) {
	p := newTestProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Transform(ctx, testGCode(t, 300, "NEPTUNE4"), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, p.current.Load().State())
}

func writeTemp(t *testing.T, data []byte, perm os.FileMode) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "model.gcode")
	require.NoError(t, os.WriteFile(name, data, perm))
	require.NoError(t, os.Chmod(name, perm))
	return name
}

func TestProcessor_ProcessFile(t *testing.T) {
	src := testGCode(t, 300, "NEPTUNE4")
	name := writeTemp(t, src, 0o600)
	p := newTestProcessor(t)
	require.NoError(t, p.ProcessFile(context.Background(), name, ""))
	assert.Equal(t, StateWritten, p.current.Load().State())

	got, err := os.ReadFile(name)
	require.NoError(t, err)
	want, err := newTestProcessor(t).Transform(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	fi, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(name))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	// idempotent
	err = p.ProcessFile(context.Background(), name, "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	again, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestProcessor_ProcessFile_untouched(t *testing.T) {
	tests := []struct {
		name    string
		src     []byte
		opts    []Option
		wantErr error
	}{
		{"unsupported printer", testGCode(t, 300, "Prusa MK4"), nil, ErrUnsupportedPrinter},
		{"no thumbnail", []byte("G28\n"), nil, ErrThumbnailNotFound},
		{"dry run", testGCode(t, 300, "NEPTUNE4"), []Option{WithDryRun(true)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := writeTemp(t, tt.src, 0o644)
			p := newTestProcessor(t, tt.opts...)
			err := p.ProcessFile(context.Background(), name, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			got, err := os.ReadFile(name)
			require.NoError(t, err)
			assert.Equal(t, tt.src, got)
		})
	}
}

func TestProcessor_ProcessFile_missing(t *testing.T) {
	p := newTestProcessor(t)
	err := p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.gcode"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, StateFailed, p.current.Load().State())
}

func TestProcessor_Report(t *testing.T) {
	p := newTestProcessor(t)
	var buf bytes.Buffer
	p.Report(&buf)
	assert.Equal(t, "idle\n", buf.String())

	_, err := p.Render(context.Background(), testGCode(t, 300, "NEPTUNE4"), "")
	require.NoError(t, err)
	buf.Reset()
	p.Report(&buf)
	assert.Contains(t, buf.String(), "state:   composed")
	assert.Contains(t, buf.String(), "printer: NEPTUNE4 (packed)")
}

func TestProcessor_Render_artwork(t *testing.T) {
	cfg := config.Default()
	p := newTestProcessor(t)
	for _, tt := range []struct {
		model string
		base  color.Color
	}{
		{"NEPTUNE2", cfg.Colors().DarkBase},
		{"ORANGESTORMGIGA", cfg.Colors().LightBase},
	} {
		t.Run(tt.model, func(t *testing.T) {
			res, err := p.Render(context.Background(), testGCode(t, 300, tt.model), "")
			require.NoError(t, err)
			art := res.Artwork
			assert.Equal(t, image.Rect(0, 0, 300, 300), art.Thumbnail.Bounds())
			assert.Equal(t, image.Rect(0, 0, canvasSize, canvasSize), art.Framed.Bounds())
			assert.Equal(t, tt.base, art.Framed.At(2, 2))
			_, _, _, a := art.Overlay.At(2, 2).RGBA()
			assert.Zero(t, a)
			// thumbnail is drawn at the origin, scaled to 600.
			_, _, _, a = art.Overlay.At(thumbOrigin.X+300, thumbOrigin.Y+300).RGBA()
			assert.NotZero(t, a)
		})
	}
}

func TestNew_badFont(t *testing.T) {
	cfg := config.Default()
	cfg.Font.Name = "no-such-font"
	_, err := New(cfg)
	assert.Error(t, err)
}

func Test_captionLines(t *testing.T) {
	tests := []struct {
		name string
		sd   gcode.SliceData
		want [4]string
	}{
		{
			name: "all values",
			sd: gcode.SliceData{
				PrintTime:     26*time.Hour + 3*time.Minute + 59*time.Second,
				Height:        12.346,
				FilamentGrams: 12.5,
				FilamentCost:  0.5,
			},
			want: [4]string{"⧖ 26:03h", "⭱ 12.35mm", "⭗ 12g", "⛁ 0.50€"},
		},
		{
			name: "whole height keeps the fraction",
			sd:   gcode.SliceData{PrintTime: 5 * time.Minute, Height: 20, FilamentGrams: 13.5, FilamentCost: 10},
			want: [4]string{"⧖ 0:05h", "⭱ 20.0mm", "⭗ 14g", "⛁ 10.00€"},
		},
		{
			name: "absent values",
			sd: gcode.SliceData{
				PrintTime:     gcode.NotAvailable,
				Height:        gcode.NotAvailable,
				FilamentGrams: gcode.NotAvailable,
				FilamentCost:  gcode.NotAvailable,
			},
			want: [4]string{"⧖ N/A", "⭱ N/A", "⭗ N/A", "⛁ N/A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, captionLines(tt.sd, "€"))
		})
	}
}
