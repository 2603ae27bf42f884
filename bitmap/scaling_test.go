package bitmap

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{"square to square", 300, 300, 200, 200, 200, 200},
		{"upscale", 300, 300, 600, 600, 600, 600},
		{"landscape", 400, 200, 100, 100, 100, 50},
		{"portrait", 200, 400, 100, 100, 50, 100},
		{"truncation", 300, 200, 100, 100, 100, 66},
		{"into landscape box", 300, 300, 10, 5, 5, 5},
		{"extreme aspect", 1000, 1, 100, 100, 100, 1},
		{"degenerate source", 0, 10, 100, 100, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitSize(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w, "width")
			assert.Equal(t, tt.wantH, h, "height")
		})
	}
}

func TestScaleToFit(t *testing.T) {
	src := imaging.New(300, 150, color.NRGBA{255, 0, 0, 255})
	src.Set(299, 149, color.NRGBA{0, 0, 255, 255})

	bmp := ScaleToFit(src, 600, 600)
	assert.Equal(t, 600, bmp.Width())
	assert.Equal(t, 300, bmp.Height())

	// nearest neighbour keeps the colours exact.
	r, g, b, err := bmp.RGB(0, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	r, g, b, err = bmp.RGB(599, 299)
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{r, g, b})

	small := ScaleToFit(src, 100, 100)
	assert.Equal(t, 100, small.Width())
	assert.Equal(t, 50, small.Height())
}

func TestStretch(t *testing.T) {
	src := imaging.New(300, 150, color.White)
	bmp := Stretch(src, 32, 32)
	assert.Equal(t, 32, bmp.Width())
	assert.Equal(t, 32, bmp.Height())
}
