// Package gcodethumb embeds the annotated thumbnails into the G-code files
// for the Elegoo Neptune printers, so that the printer touch screen shows
// the model preview with the print time, height, filament weight and cost.
package gcodethumb

import (
	"errors"

	"github.com/rusq/gcodethumb/gcode"
	"github.com/rusq/gcodethumb/thumb"
)

var (
	ErrThumbnailNotFound  = gcode.ErrThumbnailNotFound
	ErrMalformedMetadata  = gcode.ErrMalformedMetadata
	ErrUnsupportedPrinter = thumb.ErrUnsupportedPrinter
	ErrEncoding           = thumb.ErrEncoding
	// ErrAlreadyProcessed is returned when the file already has the
	// thumbnail prefix.
	ErrAlreadyProcessed = errors.New("file already has the thumbnails")
)
