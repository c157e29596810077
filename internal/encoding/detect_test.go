package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autopecas/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?><xProd>PASTILHA DE FREIO DIANTEIRA CERÂMICA</xProd>`
	r, charset, err := encoding.NewUTF8Reader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// "Peças e Lubrificação" in Windows-1252: ç = 0xE7, ã = 0xE3
	latin1 := []byte{
		'P', 'e', 0xE7, 'a', 's', ' ', 'e', ' ',
		'L', 'u', 'b', 'r', 'i', 'f', 'i', 'c', 'a', 0xE7, 0xE3, 'o',
	}

	out, charset, err := encoding.ParaUTF8(latin1)
	require.NoError(t, err)
	assert.NotEqual(t, encoding.UTF8, charset)
	assert.Equal(t, "Peças e Lubrificação", string(out))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	content := []byte("<nfeProc>Razão Social</nfeProc>")
	input := append([]byte{0xEF, 0xBB, 0xBF}, content...)

	out, charset, err := encoding.ParaUTF8(input)
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, string(content), string(out))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "NF-e" as UTF-16 LE with BOM
	input := []byte{0xFF, 0xFE, 'N', 0, 'F', 0, '-', 0, 'e', 0}

	out, charset, err := encoding.ParaUTF8(input)
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF16LE, charset)
	assert.Equal(t, "NF-e", string(out))
}

func TestNewUTF8Reader_UTF8CutAtPeekBoundary(t *testing.T) {
	// "ç" is two bytes; place it so the peek window splits it.
	var b bytes.Buffer
	b.WriteString(strings.Repeat("a", 4095))
	b.WriteString("ção")

	out, charset, err := encoding.ParaUTF8(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, b.String(), string(out))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	out, charset, err := encoding.ParaUTF8(nil)
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, charset)
	assert.Empty(t, out)
}
