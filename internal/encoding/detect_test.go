package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/aguacoop/aguacoop/internal/encoding"
)

func decode(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), r.Charset
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Medidor;Lectura actual;Observación\nA-1;120,5;Fuga en cañería\n"

	got, charset := decode(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, "UTF-8", charset)
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	want := "Observación;Señor Núñez\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(want))
	require.NoError(t, err)

	got, charset := decode(t, latin1)
	assert.Equal(t, want, got)
	assert.NotEqual(t, "UTF-8", charset)
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Medidor;Lectura actual\n")...)

	got, charset := decode(t, input)
	assert.Equal(t, "Medidor;Lectura actual\n", got)
	assert.Equal(t, "UTF-8", charset)
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE, 'O', 0, 'K', 0}

	got, charset := decode(t, input)
	assert.Equal(t, "OK", got)
	assert.Equal(t, "UTF-16LE", charset)
}

func TestNewUTF8Reader_RuneAcrossPeekWindow(t *testing.T) {
	// "ñ" is two bytes; place it so the 4096-byte window splits it.
	input := strings.Repeat("a", 4095) + "ñ" + "\n"

	got, charset := decode(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, "UTF-8", charset)
}
