package gcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// thumbnailBlock returns the thumbnail block as PrusaSlicer writes it.
func thumbnailBlock(header string, data string, eol string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; thumbnail begin %s %d%s", header, len(data), eol)
	for i := 0; i < len(data); i += 78 {
		sb.WriteString("; " + data[i:min(i+78, len(data))] + eol)
	}
	sb.WriteString("; thumbnail end" + eol)
	return sb.String()
}

func Test_splitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb", []string{"a", "b"}},
		{"a\rb\r\rc", []string{"a", "b", "", "c"}},
		{"a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.in))
		})
	}
}

func TestExtractThumbnail(t *testing.T) {
	small := pngBase64(t, 16, 16)
	large := pngBase64(t, 300, 300)
	tests := []struct {
		name    string
		text    string
		minSize int
		want    *Thumbnail
		wantErr bool
	}{
		{
			name:    "picks the first large enough",
			text:    "; header\n" + thumbnailBlock("16x16", small, "\n") + thumbnailBlock("300x300", large, "\n") + "G28\n",
			minSize: 300,
			want:    &Thumbnail{Width: 300, Height: 300, Data: large},
		},
		{
			name:    "space separated dimensions and CRLF",
			text:    thumbnailBlock("300 300", large, "\r\n"),
			minSize: 300,
			want:    &Thumbnail{Width: 300, Height: 300, Data: large},
		},
		{
			name:    "carriage return lines",
			text:    ";gimage:abc\r" + thumbnailBlock("300 300", large, "\r") + "\r",
			minSize: 300,
			want:    &Thumbnail{Width: 300, Height: 300, Data: large},
		},
		{
			name:    "too small",
			text:    thumbnailBlock("16x16", small, "\n"),
			minSize: 300,
			wantErr: true,
		},
		{
			name:    "only one side large enough",
			text:    thumbnailBlock("300x200", large, "\n"),
			minSize: 300,
			wantErr: true,
		},
		{
			name:    "unterminated",
			text:    strings.TrimSuffix(thumbnailBlock("300x300", large, "\n"), "; thumbnail end\n"),
			minSize: 300,
			wantErr: true,
		},
		{
			name:    "disabled original",
			text:    strings.ReplaceAll(thumbnailBlock("300x300", large, "\n"), thumbnailBegin, origThumbnailBegin),
			minSize: 300,
			wantErr: true,
		},
		{
			name:    "no thumbnail",
			text:    "G28\nG1 X10\n",
			minSize: 1,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractThumbnail(tt.text, tt.minSize)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrThumbnailNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThumbnail_Decode(t *testing.T) {
	th := &Thumbnail{Width: 20, Height: 10, Data: pngBase64(t, 20, 10)}
	img, err := th.Decode()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())

	_, err = (&Thumbnail{Data: "!!!"}).Decode()
	assert.ErrorIs(t, err, ErrThumbnailNotFound)
	_, err = (&Thumbnail{Data: base64.StdEncoding.EncodeToString([]byte("not an image"))}).Decode()
	assert.ErrorIs(t, err, ErrThumbnailNotFound)
}

func TestParseSliceData(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    SliceData
		wantErr bool
	}{
		{
			name: "all values",
			text: strings.Join([]string{
				"G28",
				"; max_z_height: 12.40",
				"; filament used [g] = 10.5, 2.25",
				"; total filament cost = 0.35",
				"; estimated printing time (normal mode) = 1d 2h 3m 4s",
				"; printer_model = NEPTUNE4",
			}, "\n"),
			want: SliceData{
				PrintTime:     26*time.Hour + 3*time.Minute + 4*time.Second,
				Height:        12.4,
				FilamentGrams: 12.75,
				FilamentCost:  0.35,
				PrinterModel:  "NEPTUNE4",
			},
		},
		{
			name: "nothing",
			text: "G28\n",
			want: SliceData{
				PrintTime:     NotAvailable,
				Height:        NotAvailable,
				FilamentGrams: NotAvailable,
				FilamentCost:  NotAvailable,
			},
		},
		{
			name: "first occurrence wins",
			text: "; max_z_height: 1\r; max_z_height: 2\r; estimated printing time (normal mode) = 1w 30m\r",
			want: SliceData{
				PrintTime:     7*24*time.Hour + 30*time.Minute,
				Height:        1,
				FilamentGrams: NotAvailable,
				FilamentCost:  NotAvailable,
			},
		},
		{
			name: "unknown time units are ignored",
			text: "; estimated printing time (normal mode) = 5m  7x 10s",
			want: SliceData{
				PrintTime:     5*time.Minute + 10*time.Second,
				Height:        NotAvailable,
				FilamentGrams: NotAvailable,
				FilamentCost:  NotAvailable,
			},
		},
		{
			name:    "malformed height",
			text:    "; max_z_height: tall",
			wantErr: true,
		},
		{
			name:    "malformed grams",
			text:    "; filament used [g] = 1.0,,2.0",
			wantErr: true,
		},
		{
			name:    "malformed cost",
			text:    "; total filament cost = $3",
			wantErr: true,
		},
		{
			name:    "malformed time",
			text:    "; estimated printing time (normal mode) = xh 3m",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSliceData(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMetadata)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.PrintTime, got.PrintTime)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
			assert.InDelta(t, tt.want.FilamentGrams, got.FilamentGrams, 1e-9)
			assert.InDelta(t, tt.want.FilamentCost, got.FilamentCost, 1e-9)
			assert.Equal(t, tt.want.PrinterModel, got.PrinterModel)
		})
	}
}

func TestSliceData_Has(t *testing.T) {
	sd, err := ParseSliceData("; max_z_height: 0")
	require.NoError(t, err)
	assert.True(t, sd.HasHeight())
	assert.False(t, sd.HasPrintTime())
	assert.False(t, sd.HasFilamentGrams())
	assert.False(t, sd.HasFilamentCost())
}

func TestDocument_Processed(t *testing.T) {
	assert.False(t, Parse([]byte("G28\n")).Processed())
	assert.True(t, Parse([]byte(";gimage:abc\rG28\n")).Processed())
	assert.True(t, Parse([]byte(";;simage:abc\rG28\n")).Processed())
}

func TestRewriter_Rewrite(t *testing.T) {
	doc := Parse([]byte("; generated by PrusaSlicer 2.6\n; thumbnail begin 300x300 4\n; abcd\n; thumbnail end\n; OrcaSlicer\nG28\n"))
	rw := NewRewriter(DefaultCensor)
	got := string(rw.Rewrite(doc, "PREFIX\r"))
	want := "PREFIX\r; generated by CensoredSlicer 2.6\n; orig_thumbnail begin 300x300 4\n; abcd\n; thumbnail end\n; CensoredSlicer\nG28\n"
	assert.Equal(t, want, got)

	// the disabled block is no longer found.
	_, err := ExtractThumbnail(got, 1)
	assert.ErrorIs(t, err, ErrThumbnailNotFound)
}

func TestRewriter_Rewrite_emptyCensor(t *testing.T) {
	doc := Parse([]byte("PrusaSlicer\n"))
	got := string(NewRewriter([]string{""}).Rewrite(doc, ""))
	assert.Equal(t, "PrusaSlicer\n", got)
}
