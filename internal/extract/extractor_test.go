package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/docchat/internal/models"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func docxArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wordBody(paragraphs string) string {
	return `<w:document ` + wordNS + `><w:body>` + paragraphs + `</w:body></w:document>`
}

func TestExtract_Plain(t *testing.T) {
	e := NewExtractor()

	res, err := e.Extract("notes.txt", []byte("Hello world\nLine 2"))
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nLine 2", res.Text)
	assert.Equal(t, "txt", res.FileType)

	res, err = e.Extract("README.MD", []byte("\xEF\xBB\xBFcaf\xc3\xa9"))
	require.NoError(t, err)
	assert.Equal(t, "café", res.Text)
	assert.Equal(t, "md", res.FileType)

	res, err = e.Extract("bad.txt", []byte("hello\x80world"))
	require.NoError(t, err)
	assert.Equal(t, "hello�world", res.Text)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := NewExtractor()
	for _, name := range []string{"image.png", "noext", "slides.pptx"} {
		_, err := e.Extract(name, []byte("raw"))
		assert.ErrorIs(t, err, models.ErrUnsupportedFileType, name)
		assert.False(t, e.Supported(name), name)
	}
}

func TestExtract_AllowList(t *testing.T) {
	e := NewExtractor(".txt", "md", ".exe")
	assert.True(t, e.Supported("a.txt"))
	assert.True(t, e.Supported("a.md"))
	assert.False(t, e.Supported("a.pdf"))
	assert.False(t, e.Supported("a.exe"))

	_, err := e.Extract("a.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, models.ErrUnsupportedFileType)
}

func TestExtract_Excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Title"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Value 1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Value 2"))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	res, err := NewExtractor().Extract("data.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Title\nValue 1\tValue 2", res.Text)
	assert.Equal(t, "xlsx", res.FileType)
	assert.Equal(t, 1, res.Pages)
}

func TestExtract_DocxParagraphs(t *testing.T) {
	body := wordBody(
		`<w:p w:rsidR="00AB"><w:r><w:t>Refund</w:t></w:r><w:r><w:t xml:space="preserve"> policy</w:t></w:r></w:p>` +
			`<w:p><w:pPr><w:jc w:val="left"/></w:pPr><w:r><w:t>Returns &amp; exchanges</w:t></w:r></w:p>` +
			`<w:p></w:p>`)
	content := docxArchive(t, map[string]string{"word/document.xml": body})

	res, err := NewExtractor().Extract("policy.docx", content)
	require.NoError(t, err)
	assert.Equal(t, "Refund policy\nReturns & exchanges", res.Text)
	assert.Equal(t, "docx", res.FileType)
}

func TestExtract_DocxContentTypes(t *testing.T) {
	cases := map[string]string{
		"part name first":    `<Override PartName="/word/document2.xml" ContentType="` + docxMainType + `"/>`,
		"content type first": `<Override ContentType="` + docxMainType + `" PartName="/word/document2.xml"/>`,
	}
	for name, override := range cases {
		t.Run(name, func(t *testing.T) {
			content := docxArchive(t, map[string]string{
				contentTypesPath:     `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + override + `</Types>`,
				"word/document2.xml": wordBody(`<w:p><w:r><w:t>From document2</w:t></w:r></w:p>`),
			})
			res, err := NewExtractor().Extract("x.docx", content)
			require.NoError(t, err)
			assert.Equal(t, "From document2", res.Text)
		})
	}
}

func TestExtract_DocxErrors(t *testing.T) {
	e := NewExtractor()

	_, err := e.Extract("broken.docx", []byte("not a zip"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnsupportedFileType)

	_, err = e.Extract("empty.docx", docxArchive(t, map[string]string{"other.xml": "<x/>"}))
	assert.ErrorContains(t, err, "word/document.xml not found")
}

func TestExtract_InvalidPDF(t *testing.T) {
	_, err := NewExtractor().Extract("scan.pdf", []byte("definitely not a pdf"))
	assert.Error(t, err)
}
