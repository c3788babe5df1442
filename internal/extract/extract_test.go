package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/models"
)

func TestRegistry_UnsupportedFormat(t *testing.T) {
	reg := NewRegistry("")

	_, err := reg.Extract(context.Background(), []byte("data"), "application/zip")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestRegistry_SupportedSet(t *testing.T) {
	reg := NewRegistry("")
	for _, mt := range SupportedMimeTypes() {
		assert.True(t, reg.Supported(mt), mt)
	}
	assert.False(t, reg.Supported("text/html"))
	assert.False(t, reg.Supported(""))
}

func TestPlainTextExtractor(t *testing.T) {
	e := &PlainTextExtractor{}

	text, err := e.Extract(context.Background(), []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestPlainTextExtractor_InvalidUTF8(t *testing.T) {
	e := &PlainTextExtractor{}

	text, err := e.Extract(context.Background(), []byte{'o', 'k', 0xff, '!'})
	require.NoError(t, err)
	assert.Contains(t, text, "ok")
	assert.Contains(t, text, "!")
}

const docBodyXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxExtractor(t *testing.T) {
	e := &DocxExtractor{}

	text, err := e.Extract(context.Background(), buildDocx(t, docBodyXML))
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
}

func TestDocxExtractor_CorruptArchive(t *testing.T) {
	e := &DocxExtractor{}

	_, err := e.Extract(context.Background(), []byte("this is not a zip"))
	assert.Error(t, err)
}

func TestDocxExtractor_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	e := &DocxExtractor{}
	_, err = e.Extract(context.Background(), buf.Bytes())
	assert.Error(t, err)
}

func TestDecodeContentText_LiteralStrings(t *testing.T) {
	content := []byte(`BT /F1 12 Tf 72 712 Td (Hello World) Tj ET`)
	assert.Equal(t, "Hello World", decodeContentText(content))
}

func TestDecodeContentText_TJArray(t *testing.T) {
	content := []byte(`BT [(Hel) -20 (lo) 5 ( there)] TJ ET`)
	assert.Equal(t, "Hello there", decodeContentText(content))
}

func TestDecodeContentText_HexString(t *testing.T) {
	content := []byte(`BT <48656C6C6F> Tj ET`)
	assert.Equal(t, "Hello", decodeContentText(content))
}

func TestDecodeContentText_EscapesAndNesting(t *testing.T) {
	content := []byte(`BT (a \(nested\) value \\ done) Tj ET`)
	assert.Equal(t, `a (nested) value \ done`, decodeContentText(content))
}

func TestDecodeContentText_SkipsDictionaries(t *testing.T) {
	content := []byte(`<< /Length 42 >> stream BT (text) Tj ET`)
	assert.Equal(t, "text", decodeContentText(content))
}

func TestImageExtractor_RejectsCorruptImage(t *testing.T) {
	e := NewImageExtractor("")
	_, err := e.Extract(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}
