// Package gcode reads the slicer output: embedded thumbnails and slice
// metadata, and rewrites the document with the new prefix.
package gcode

import (
	"errors"
	"strings"
)

var (
	// ErrThumbnailNotFound is returned when there is no suitable thumbnail
	// in the document.
	ErrThumbnailNotFound = errors.New("thumbnail not found")
	// ErrMalformedMetadata is returned when the metadata value can't be
	// parsed.
	ErrMalformedMetadata = errors.New("malformed metadata")
)

const (
	thumbnailBegin     = "; thumbnail begin "
	thumbnailEnd       = "; thumbnail end"
	origThumbnailBegin = "; orig_thumbnail begin "

	// Censored is the replacement for the slicer names.
	Censored = "CensoredSlicer"
)

// processedMarkers are the markers that only the thumbnail prefix contains.
var processedMarkers = []string{";gimage:", ";simage:"}

// DefaultCensor is the list of slicer names that the Neptune firmware
// refuses to show the thumbnails for.
var DefaultCensor = []string{"PrusaSlicer", "OrcaSlicer"}

// Document is the G-code text.
type Document struct {
	text string
}

func Parse(data []byte) *Document {
	return &Document{text: string(data)}
}

func (d *Document) Text() string {
	return d.text
}

func (d *Document) Len() int {
	return len(d.text)
}

// Processed reports whether the document already has the thumbnail prefix.
func (d *Document) Processed() bool {
	for _, m := range processedMarkers {
		if strings.Contains(d.text, m) {
			return true
		}
	}
	return false
}

// Thumbnail returns the first embedded thumbnail that is at least minSize
// wide and high.
func (d *Document) Thumbnail(minSize int) (*Thumbnail, error) {
	return ExtractThumbnail(d.text, minSize)
}

// SliceData returns the slice metadata.
func (d *Document) SliceData() (SliceData, error) {
	return ParseSliceData(d.text)
}

// Rewriter rewrites the document text.
type Rewriter struct {
	r *strings.Replacer
}

// NewRewriter returns the Rewriter that replaces the censor names with
// Censored and disables the original thumbnail blocks, so that the firmware
// doesn't find them.
func NewRewriter(censor []string) *Rewriter {
	oldnew := make([]string, 0, len(censor)*2+2)
	for _, name := range censor {
		if name == "" {
			continue
		}
		oldnew = append(oldnew, name, Censored)
	}
	oldnew = append(oldnew, thumbnailBegin, origThumbnailBegin)
	return &Rewriter{r: strings.NewReplacer(oldnew...)}
}

// Rewrite returns the rewritten document with the prefix prepended.
func (rw *Rewriter) Rewrite(d *Document, prefix string) []byte {
	var sb strings.Builder
	sb.Grow(len(prefix) + len(d.text))
	sb.WriteString(prefix)
	if _, err := rw.r.WriteString(&sb, d.text); err != nil {
		// strings.Builder never fails.
		panic(err)
	}
	return []byte(sb.String())
}

// splitLines splits the text into lines, terminated by "\n", "\r\n" or "\r".
func splitLines(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return lines
}
