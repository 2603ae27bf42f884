package thumb

import "github.com/rusq/gcodethumb/bitmap"

// Pack565 packs 8-bit RGB channels into a 16-bit RGB565 value.
func Pack565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// pixels565 returns the row-major RGB565 values of the bitmap.
func pixels565(bmp *bitmap.Bitmap) ([]uint16, error) {
	w, h := bmp.Width(), bmp.Height()
	px := make([]uint16, 0, w*h)
	for y := range h {
		for x := range w {
			r, g, b, err := bmp.RGB(x, y)
			if err != nil {
				return nil, err
			}
			px = append(px, Pack565(r, g, b))
		}
	}
	return px, nil
}
