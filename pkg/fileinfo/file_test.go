package fileinfo

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDetectsRepresentation(t *testing.T) {
	text := New("/root/a.js", "a.js", []byte("var a = 1;"), "")
	assert.True(t, text.IsText())
	assert.Equal(t, DefaultEncoding, text.Encoding())
	assert.Equal(t, "var a = 1;", text.Text())
	assert.Equal(t, "a.js", text.OutputPath)

	bin := New("/root/a.jpg", "a.jpg", []byte{0xFF, 0xD8, 0x00, 0x10}, "")
	assert.False(t, bin.IsText())
	assert.Empty(t, bin.Encoding())
	assert.Empty(t, bin.Text())
	assert.Equal(t, []byte{0xFF, 0xD8, 0x00, 0x10}, bin.Bytes())
}

func TestNewStripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("body")...)

	for _, enc := range []string{"", "utf8", "UTF-8", "Utf-8"} {
		f := New("/r/x.txt", "x.txt", data, enc)
		require.True(t, f.IsText(), enc)
		assert.Equal(t, "body", f.Text(), enc)
		assert.Equal(t, []byte("body"), f.Bytes(), "BOM is never re-added")
	}
}

func TestNewWithNamedEncodingRoundTrips(t *testing.T) {
	gbk := []byte{0xD6, 0xD0, 0xCE, 0xC4} // "中文"

	f := New("/r/cn.txt", "cn.txt", gbk, "gbk")
	require.True(t, f.IsText())
	assert.Equal(t, "gbk", f.Encoding())
	assert.Equal(t, "中文", f.Text())
	assert.Equal(t, gbk, f.Bytes())
}

func TestNewWithUnknownEncodingFallsBackToBytes(t *testing.T) {
	data := []byte("plain")
	f := New("/r/x.txt", "x.txt", data, "no-such-charset")

	assert.False(t, f.IsText())
	assert.Empty(t, f.Encoding())
	assert.Equal(t, data, f.Bytes())
}

func TestNewWithUndecodableContentFallsBackToBytes(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		data     []byte
	}{
		{"invalid shift_jis lead byte", "shift_jis", []byte{'a', 0x81, 0xFF, 'b'}},
		{"truncated gbk sequence", "gbk", []byte{'x', 0xD6}},
		{"invalid euc-kr pair", "euc-kr", []byte{0xB0, 0x20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("/r/x.txt", "x.txt", tt.data, tt.encoding)
			assert.False(t, f.IsText())
			assert.Empty(t, f.Encoding())
			assert.Equal(t, tt.data, f.Bytes())
		})
	}
}

func TestNewWithValidShiftJISRoundTrips(t *testing.T) {
	sjis := []byte{'a', 0x82, 0xA0, 'b'} // "aあb"

	f := New("/r/jp.txt", "jp.txt", sjis, "shift_jis")
	require.True(t, f.IsText())
	assert.Equal(t, "aあb", f.Text())
	assert.Equal(t, sjis, f.Bytes())
}

func TestUTF8RoundTripPreservesBytes(t *testing.T) {
	data := []byte("line one\r\nline two\xff\n")
	f := New("/r/x.txt", "x.txt", data, "utf-8")
	assert.Equal(t, data, f.Bytes())
}

func TestSetTextAndSetBytes(t *testing.T) {
	f := New("/r/a.bin", "a.bin", []byte{0x00, 0x01}, "")
	require.False(t, f.IsText())

	f.SetText("now text")
	assert.True(t, f.IsText())
	assert.Equal(t, DefaultEncoding, f.Encoding())
	assert.Equal(t, []byte("now text"), f.Bytes())

	f.SetBytes([]byte{0x02})
	assert.False(t, f.IsText())
	assert.Empty(t, f.Encoding())
	assert.Empty(t, f.Text())
	assert.Equal(t, []byte{0x02}, f.Bytes())
}

func TestSetTextKeepsLoadEncoding(t *testing.T) {
	f := New("/r/cn.txt", "cn.txt", []byte{0xD6, 0xD0}, "gbk")
	f.SetText("中文")
	assert.Equal(t, "gbk", f.Encoding())
	assert.Equal(t, []byte{0xD6, 0xD0, 0xCE, 0xC4}, f.Bytes())
}

func TestFingerprintIsCached(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02}
	f := New("/r/a.bin", "a.bin", raw, "")

	first := f.Fingerprint()
	require.Len(t, first, 32)

	// Mutating the buffer behind the record's back must not be observed:
	// the second call reuses the cached digest.
	raw[1] = 0xFF
	assert.Equal(t, first, f.Fingerprint())

	f.SetBytes(raw)
	assert.NotEqual(t, first, f.Fingerprint())
}

func TestFingerprintChangesAfterSetText(t *testing.T) {
	f := New("/r/a.js", "a.js", []byte("a"), "")
	before := f.Fingerprint()
	// md5("a")
	assert.Equal(t, "0cc175b9c0f1b6a831c399e269772661", before)

	f.SetText("b")
	assert.Equal(t, "92eb5ffee6ae2fec3ad71c777531578f", f.Fingerprint())
}

func TestFingerprintRange(t *testing.T) {
	f := New("/r/a.js", "a.js", []byte("a"), "")

	assert.Equal(t, "0cc175b9", f.FingerprintRange(0, 8))
	assert.Equal(t, "c175", f.FingerprintRange(2, 6))
	assert.Equal(t, f.Fingerprint(), f.FingerprintRange(0, 0))
	assert.Equal(t, "61", f.FingerprintRange(30, 100))
	assert.Empty(t, f.FingerprintRange(10, 5))
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/index.html", []byte("<html></html>"), 0o644))

	f, err := Load(fsys, "/src/index.html", "index.html", "")
	require.NoError(t, err)
	assert.Equal(t, "/src/index.html", f.FullPath())
	assert.Equal(t, "index.html", f.RelativePath())
	assert.Equal(t, "<html></html>", f.Text())

	_, err = Load(fsys, "/src/missing.html", "missing.html", "")
	assert.Error(t, err)
}

func TestEncodingExists(t *testing.T) {
	assert.True(t, EncodingExists("utf8"))
	assert.True(t, EncodingExists("GBK"))
	assert.True(t, EncodingExists("shift_jis"))
	assert.False(t, EncodingExists("klingon"))
	assert.False(t, EncodingExists(""))
}
