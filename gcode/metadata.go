package gcode

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotAvailable marks the absent numeric metadata value.
const NotAvailable = -1

// SliceData is the print metadata, that the slicer writes in the comments.
type SliceData struct {
	PrintTime     time.Duration
	Height        float64 // mm
	FilamentGrams float64
	FilamentCost  float64
	PrinterModel  string
}

func (s SliceData) HasPrintTime() bool { return s.PrintTime >= 0 }
func (s SliceData) HasHeight() bool { return s.Height >= 0 }
func (s SliceData) HasFilamentGrams() bool { return s.FilamentGrams >= 0 }
func (s SliceData) HasFilamentCost() bool { return s.FilamentCost >= 0 }

const (
	keyHeight   = "; max_z_height: "
	keyFilament = "; filament used [g] = "
	keyCost     = "; total filament cost = "
	keyTime     = "; estimated printing time (normal mode) = "
	keyModel    = "; printer_model = "
)

var timeUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseSliceData parses the metadata comments.  The first occurrence of each
// key is used, absent values are NotAvailable.
func ParseSliceData(text string) (SliceData, error) {
	sd := SliceData{
		PrintTime:     NotAvailable,
		Height:        NotAvailable,
		FilamentGrams: NotAvailable,
		FilamentCost:  NotAvailable,
	}
	values := make(map[string]string, 5)
	keys := []string{keyHeight, keyFilament, keyCost, keyTime, keyModel}
	for _, line := range splitLines(text) {
		if !strings.HasPrefix(line, "; ") {
			continue
		}
		for _, k := range keys {
			if _, seen := values[k]; seen {
				continue
			}
			if v, ok := strings.CutPrefix(line, k); ok {
				values[k] = strings.TrimSpace(v)
			}
		}
		if len(values) == len(keys) {
			break
		}
	}

	var err error
	if v, ok := values[keyHeight]; ok {
		if sd.Height, err = parseFloat(v); err != nil {
			return sd, fmt.Errorf("max z height: %w", err)
		}
	}
	if v, ok := values[keyFilament]; ok {
		if sd.FilamentGrams, err = parseGrams(v); err != nil {
			return sd, fmt.Errorf("filament used: %w", err)
		}
	}
	if v, ok := values[keyCost]; ok {
		if sd.FilamentCost, err = parseFloat(v); err != nil {
			return sd, fmt.Errorf("filament cost: %w", err)
		}
	}
	if v, ok := values[keyTime]; ok {
		if sd.PrintTime, err = parseDuration(v); err != nil {
			return sd, fmt.Errorf("printing time: %w", err)
		}
	}
	sd.PrinterModel = values[keyModel]
	return sd, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedMetadata, s)
	}
	return v, nil
}

// parseGrams sums the comma separated per-extruder values.
func parseGrams(s string) (float64, error) {
	var sum float64
	for _, part := range strings.Split(s, ",") {
		v, err := parseFloat(part)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

// parseDuration parses the slicer duration, i.e. "1d 2h 3m 4s".  Parts with
// unknown units are ignored.
func parseDuration(s string) (time.Duration, error) {
	var d time.Duration
	for _, part := range strings.Split(s, " ") {
		if part == "" {
			continue
		}
		unit, ok := timeUnits[part[len(part)-1]]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(part[:len(part)-1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedMetadata, s)
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}
