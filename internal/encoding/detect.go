// Package encoding normalizes uploaded spreadsheet exports to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const peekSize = 4096

var boms = []struct {
	prefix  []byte
	charset string
	decoder func() *encoding.Decoder
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8", nil},
	{[]byte{0xFF, 0xFE}, "UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder},
	{[]byte{0xFE, 0xFF}, "UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder},
}

// Single-byte charsets spreadsheet tools commonly emit for Spanish text.
var legacy = map[string]*charmap.Charmap{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// Reader yields UTF-8 text and remembers which charset the source was in.
type Reader struct {
	io.Reader
	Charset string
}

// NewUTF8Reader sniffs the first bytes of r and decodes it to UTF-8. A BOM wins,
// then valid UTF-8 passes through, then chardet picks a legacy charset. Anything
// left over is read as Windows-1252.
func NewUTF8Reader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(buf, b.prefix) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.prefix))
			return &Reader{Reader: br, Charset: b.charset}, nil
		}

		return &Reader{Reader: transform.NewReader(br, b.decoder()), Charset: b.charset}, nil
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return &Reader{Reader: br, Charset: "UTF-8"}, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if cm, ok := legacy[result.Charset]; ok {
			return &Reader{Reader: transform.NewReader(br, cm.NewDecoder()), Charset: result.Charset}, nil
		}
	}

	return &Reader{Reader: transform.NewReader(br, charmap.Windows1252.NewDecoder()), Charset: "windows-1252"}, nil
}

// trimPartialRune drops a multi-byte sequence cut off by the peek window.
func trimPartialRune(buf []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.RuneStart(buf[len(buf)-i]) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}

			break
		}
	}

	return buf
}
