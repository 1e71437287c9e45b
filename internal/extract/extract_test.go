package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func docx(paragraphs ...string) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&b, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func slide(text string) string {
	return fmt.Sprintf(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`, text)
}

func TestTextDOCX(t *testing.T) {
	data := zipOf(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   docx("Capítulo 1", "A   normalização   reduz redundância."),
	})
	text, err := Text("aula.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Capítulo 1\nA normalização reduz redundância.", text)
}

func TestTextPPTXSlideOrder(t *testing.T) {
	data := zipOf(t, map[string]string{
		"ppt/presentation.xml":             "<p:presentation/>",
		"ppt/slides/slide10.xml":           slide("dez"),
		"ppt/slides/slide2.xml":            slide("dois"),
		"ppt/slides/slide1.xml":            slide("um"),
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
	})
	text, err := Text("slides.pptx", data)
	require.NoError(t, err)
	assert.Equal(t, "um\ndois\ndez", text)
}

func TestTextPlain(t *testing.T) {
	text, err := Text("notas.md", []byte("# Título\r\n\r\n  texto  livre \n"))
	require.NoError(t, err)
	assert.Equal(t, "# Título\ntexto livre", text)
}

func TestTextFailures(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want error
	}{
		{"empty", "a.txt", nil, ErrEmptyText},
		{"blank", "a.txt", []byte("   \n "), ErrEmptyText},
		{"fake pdf", "a.pdf", []byte("hello"), nil},
		{"fake docx", "a.docx", []byte("hello"), nil},
		{"binary", "a.bin", []byte{0x00, 0x01, 0x02, 0x03}, ErrUnsupported},
		{"foreign zip", "a.zip", nil, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if tt.name == "foreign zip" {
				data = zipOf(t, map[string]string{"x/y.txt": "z"})
			}
			_, err := Text(tt.file, data)
			require.ErrorIs(t, err, ErrFileRead)
			var fre *FileReadError
			require.True(t, errors.As(err, &fre))
			assert.Equal(t, tt.file, fre.Name)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestTextBrokenPDF(t *testing.T) {
	_, err := Text("a.pdf", []byte("%PDF-1.4\nnot really a pdf"))
	assert.ErrorIs(t, err, ErrFileRead)
}

func TestDocumentsKeepsOrder(t *testing.T) {
	docs := []Document{
		{Name: "1.txt", Data: []byte("primeiro")},
		{Name: "2.docx", Data: zipOf(t, map[string]string{"word/document.xml": docx("segundo")})},
		{Name: "3.md", Data: []byte("terceiro")},
	}
	text, err := Documents(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, "primeiro\n\nsegundo\n\nterceiro", text)
}

func TestDocumentsFailsOnAnyFile(t *testing.T) {
	docs := []Document{
		{Name: "ok.txt", Data: []byte("ok")},
		{Name: "bad.pdf", Data: []byte("nope")},
	}
	_, err := Documents(context.Background(), docs)
	var fre *FileReadError
	require.ErrorAs(t, err, &fre)
	assert.Equal(t, "bad.pdf", fre.Name)
}

func TestSlideNumber(t *testing.T) {
	n, ok := slideNumber("ppt/slides/slide12.xml")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	_, ok = slideNumber("ppt/slides/_rels/slide1.xml.rels")
	assert.False(t, ok)
	_, ok = slideNumber("ppt/slideLayouts/slideLayout1.xml")
	assert.False(t, ok)
}
