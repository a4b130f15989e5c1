package fileinfo

import (
	"bytes"
	"regexp"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is assigned to every file that is not classified as binary.
const DefaultEncoding = "UTF-8"

var (
	utf8Name = regexp.MustCompile(`(?i)^utf-?8$`)
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// IsUTF8 reports whether name designates UTF-8, case-insensitive, with or
// without the hyphen.
func IsUTF8(name string) bool {
	return utf8Name.MatchString(name)
}

// EncodingExists reports whether name is a text encoding that can be used to
// decode file content.
func EncodingExists(name string) bool {
	if IsUTF8(name) {
		return true
	}
	_, ok := lookupEncoding(name)
	return ok
}

func lookupEncoding(name string) (encoding.Encoding, bool) {
	if name == "" {
		return nil, false
	}
	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return nil, false
	}
	return enc, true
}

// stripBOM drops a leading UTF-8 byte-order mark.
func stripBOM(data []byte) []byte {
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):]
	}
	return data
}

// decode turns raw bytes into text under the named encoding. ok is false when
// the encoding is unknown or the text does not encode back to data exactly;
// codecs substitute U+FFFD for invalid input instead of failing.
func decode(data []byte, name string) (text string, ok bool) {
	if IsUTF8(name) {
		return string(stripBOM(data)), true
	}
	enc, found := lookupEncoding(name)
	if !found {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	reencoded, err := enc.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(reencoded, data) {
		return "", false
	}
	return string(decoded), true
}

// encode is the inverse of decode. Runes the target charset cannot represent
// are replaced by the codec's substitution character.
func encode(text, name string) []byte {
	if IsUTF8(name) {
		return []byte(text)
	}
	enc, found := lookupEncoding(name)
	if !found {
		return []byte(text)
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return out
}
