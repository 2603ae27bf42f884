package thumb

import "strings"

// DefaultBlockSize is the firmware read buffer size.  Each line of a chunked
// block must fit in it together with the marker and the line terminator.
const DefaultBlockSize = 1024

// lineMax returns the maximum number of payload characters per line for the
// given block size.
func lineMax(blockSize int) int {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return blockSize - 8 - 1
}

// wrapChunks writes the payload split into lines of at most eachMax
// characters.  The first line starts with the marker, the following ones with
// "\r" and the marker, and the last partial line with "\r;" and the marker.
// The last line rule takes precedence, so the payload shorter than eachMax
// starts with "\r;".
func wrapChunks(sb *strings.Builder, payload, marker string, eachMax int) {
	n := len(payload)
	last := (n / eachMax) * eachMax
	for j := 0; j < n; j += eachMax {
		switch j {
		case last:
			sb.WriteString("\r;")
		case 0:
		default:
			sb.WriteByte('\r')
		}
		sb.WriteString(marker)
		sb.WriteString(payload[j:min(j+eachMax, n)])
	}
}
