package fileinfo

import (
	"encoding/hex"
	"strings"
)

// BinaryScanSize is the number of leading bytes inspected by IsBinary.
const BinaryScanSize = 4096

// IsBinary reports whether buffer looks like binary content.
// The first BinaryScanSize bytes are rendered as hex and scanned for a "00"
// pair sitting on a byte boundary. Pairs found at odd offsets straddle two
// bytes and are skipped.
func IsBinary(buffer []byte) bool {
	if len(buffer) > BinaryScanSize {
		buffer = buffer[:BinaryScanSize]
	}
	hexString := hex.EncodeToString(buffer)

	offset := 0
	for {
		idx := strings.Index(hexString[offset:], "00")
		if idx < 0 {
			return false
		}
		if (offset+idx)%2 == 0 {
			return true
		}
		offset += idx + 1
	}
}
