package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	docxDefaultBody  = "word/document.xml"
	contentTypesPath = "[Content_Types].xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// Paragraph bodies, with or without attributes on <w:p>.
	docxParagraph = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	docxText      = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	docxBreak     = regexp.MustCompile(`<w:(?:tab|br)\s*/>`)

	// [Content_Types].xml overrides list PartName and ContentType in either order.
	mainPartFirst  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainType) + `"`)
	mainPartSecond = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainType) + `"[^>]+PartName="([^"]+)"`)
)

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

// extractDOCX returns the document body one paragraph per line. Runs inside a paragraph are
// concatenated as-is since Word splits words across runs.
func extractDOCX(content []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a docx archive: %w", err)
	}

	bodyPath := docxDefaultBody
	if types, err := readZipFile(zr, contentTypesPath); err == nil {
		if p := mainDocumentPart(string(types)); p != "" {
			bodyPath = p
		}
	}
	body, err := readZipFile(zr, bodyPath)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	for _, para := range docxParagraph.FindAllString(string(body), -1) {
		para = docxBreak.ReplaceAllString(para, "<w:t> </w:t>")
		var b strings.Builder
		for _, m := range docxText.FindAllStringSubmatch(para, -1) {
			b.WriteString(m[1])
		}
		if text := strings.TrimSpace(xmlEntities.Replace(b.String())); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return &Result{Text: strings.Join(paragraphs, "\n")}, nil
}

func mainDocumentPart(types string) string {
	for _, re := range []*regexp.Regexp{mainPartFirst, mainPartSecond} {
		if m := re.FindStringSubmatch(types); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
