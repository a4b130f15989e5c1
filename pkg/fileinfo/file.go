package fileinfo

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/spf13/afero"
)

// FileInfo is one source file of a build: its identity, its content and where
// it will be written.
//
// Content is either decoded text (Encoding() is non-empty) or raw bytes
// (Encoding() is empty). OutputPath defaults to the relative path; processors
// may rewrite it, clear it to skip the file, or add extra OutputPaths.
type FileInfo struct {
	fullPath     string
	relativePath string

	// OutputPath is the destination relative to the output directory.
	OutputPath string
	// OutputPaths are additional destinations written alongside OutputPath.
	OutputPaths []string

	encoding string
	text     string
	raw      []byte
	isText   bool

	md5sum string
}

// Load reads fullPath from fsys and builds a FileInfo from its content.
// An empty encoding requests detection: binary content stays raw, anything
// else is decoded as UTF-8.
func Load(fsys afero.Fs, fullPath, relativePath, encoding string) (*FileInfo, error) {
	data, err := afero.ReadFile(fsys, fullPath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", fullPath, err)
	}
	return New(fullPath, relativePath, data, encoding), nil
}

// New builds a FileInfo from content already in memory.
func New(fullPath, relativePath string, data []byte, encoding string) *FileInfo {
	f := &FileInfo{
		fullPath:     fullPath,
		relativePath: relativePath,
		OutputPath:   relativePath,
	}

	if encoding == "" {
		if IsBinary(data) {
			f.raw = data
			return f
		}
		encoding = DefaultEncoding
	}

	text, ok := decode(data, encoding)
	if !ok {
		f.raw = data
		return f
	}
	f.encoding = encoding
	f.text = text
	f.isText = true
	return f
}

// FullPath returns the absolute, OS-native source path.
func (f *FileInfo) FullPath() string { return f.fullPath }

// RelativePath returns the slash-separated path relative to the build root.
func (f *FileInfo) RelativePath() string { return f.relativePath }

// Encoding returns the text encoding name, or "" for binary content.
func (f *FileInfo) Encoding() string {
	if !f.isText {
		return ""
	}
	return f.encoding
}

// IsText reports whether the active representation is decoded text.
func (f *FileInfo) IsText() bool { return f.isText }

// Text returns the decoded content. It is empty for binary content.
func (f *FileInfo) Text() string {
	if !f.isText {
		return ""
	}
	return f.text
}

// Bytes returns the encoded byte form of the content. Text is re-encoded with
// the file's encoding; binary content is returned unchanged.
func (f *FileInfo) Bytes() []byte {
	if !f.isText {
		return f.raw
	}
	return encode(f.text, f.encoding)
}

// SetText replaces the content with text. A binary file switches to text and
// takes DefaultEncoding.
func (f *FileInfo) SetText(text string) {
	if f.encoding == "" {
		f.encoding = DefaultEncoding
	}
	f.text = text
	f.raw = nil
	f.isText = true
	f.md5sum = ""
}

// SetBytes replaces the content with raw bytes and drops the text encoding.
func (f *FileInfo) SetBytes(data []byte) {
	f.raw = data
	f.text = ""
	f.encoding = ""
	f.isText = false
	f.md5sum = ""
}

// Fingerprint returns the hex MD5 digest of Bytes(). The digest is computed
// once and reused until the content is replaced.
func (f *FileInfo) Fingerprint() string {
	if f.md5sum == "" {
		sum := md5.Sum(f.Bytes())
		f.md5sum = hex.EncodeToString(sum[:])
	}
	return f.md5sum
}

// FingerprintRange returns digest[start:end] of Fingerprint. A non-positive
// end means the end of the digest; out-of-range bounds are clamped.
func (f *FileInfo) FingerprintRange(start, end int) string {
	digest := f.Fingerprint()
	if end <= 0 || end > len(digest) {
		end = len(digest)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return digest[start:end]
}
