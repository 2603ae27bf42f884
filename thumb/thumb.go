// Package thumb encodes thumbnail bitmaps into the G-code comment blocks that
// Elegoo Neptune printer firmware displays on the touch screen.
//
// There are three firmware families, each reading its own representation:
// the legacy hex row stream (Neptune 2 series), the ColPic packed colour
// stream (Neptune 3 Pro/Plus/Max, Neptune 4 series) and the base64 JPEG
// stream (OrangeStorm Giga).  Every family additionally gets a pair of
// Klipper style base64 PNG thumbnails.
package thumb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedPrinter is returned when the printer family is unknown.
	ErrUnsupportedPrinter = errors.New("unsupported printer")
	// ErrEncoding is returned when the image can not be encoded.
	ErrEncoding = errors.New("encoding error")
)

// Family is the firmware family of the printer.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyLegacy
	FamilyPacked
	FamilyJPEG
)

var familyNames = [...]string{
	FamilyUnknown: "unknown",
	FamilyLegacy:  "legacy",
	FamilyPacked:  "packed",
	FamilyJPEG:    "jpeg",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%d)", f)
}

// ParseFamily returns the family by its name.
func ParseFamily(s string) (Family, error) {
	for i, name := range familyNames {
		if strings.EqualFold(s, name) && Family(i) != FamilyUnknown {
			return Family(i), nil
		}
	}
	return FamilyUnknown, fmt.Errorf("%w: family %q", ErrUnsupportedPrinter, s)
}

// Target is the single encoded image that the firmware expects.
type Target struct {
	Width  int
	Height int
	// Marker is the comment prefix that the firmware looks for, i.e.
	// ";gimage:".
	Marker string
}

// Layout maps the family to the ordered list of targets.
type Layout map[Family][]Target

// Set is the composed set of encoded blocks.
type Set struct {
	Blocks []string
	Footer string
}

// String returns the prefix that should be prepended to the G-code file.
// Empty set produces an empty string.
func (s Set) String() string {
	if len(s.Blocks) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, b := range s.Blocks {
		sb.WriteString(b)
	}
	sb.WriteString(s.Footer)
	return sb.String()
}

// Len returns the length of the composed prefix in bytes.
func (s Set) Len() int {
	if len(s.Blocks) == 0 {
		return 0
	}
	n := len(s.Footer)
	for _, b := range s.Blocks {
		n += len(b)
	}
	return n
}

// Footer returns the trailer that follows the thumbnail blocks.  The second
// line makes the firmware treat the file as Cura output, which is the only
// way to get the Neptune firmware to look for thumbnails.
func Footer(name, url string) string {
	return "\r; Thumbnail generated by " + name + " (" + url + ")" +
		"\r; Just mentioning \"Cura_SteamEngine X.X\" to trick printer into thinking this is Cura gcode\r\r"
}
