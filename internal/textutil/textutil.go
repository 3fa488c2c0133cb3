// Package textutil turns fetched or uploaded content into plain text.
package textutil

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"
)

var (
	htmlTagPattern   = regexp.MustCompile(`(?is)<\s*(html|body|div|p|br|span|table|a|h[1-6]|ul|ol|li)\b[^>]*>`)
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// LooksLikeHTML reports whether s contains common HTML markup
func LooksLikeHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}

// HTMLToText renders HTML as markdown-flavored plain text
func HTMLToText(html string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return strings.TrimSpace(blankRunsPattern.ReplaceAllString(md, "\n\n")), nil
}

// Plain converts s to text when it looks like HTML and returns it unchanged otherwise
func Plain(s string) string {
	if !LooksLikeHTML(s) {
		return s
	}
	text, err := HTMLToText(s)
	if err != nil {
		return s
	}
	return text
}

// PDFToText extracts the text layer of a PDF document
func PDFToText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Extract converts an uploaded file to text and names its artifact kind
func Extract(filename string, data []byte) (text, kind string, err error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch ext {
	case "pdf":
		text, err = PDFToText(bytes.NewReader(data), int64(len(data)))
		return text, "pdf", err
	case "html", "htm":
		text, err = HTMLToText(string(data))
		return text, "document", err
	case "md", "markdown":
		kind = "markdown"
	case "csv":
		kind = "csv"
	case "txt", "":
		kind = "text"
	case "eml":
		kind = "email"
	default:
		kind = ext
	}

	if !utf8.Valid(data) {
		return "", "", fmt.Errorf("unsupported binary file type: %q", ext)
	}
	return string(data), kind, nil
}

// TruncateRunes cuts s to at most max runes and reports whether it did
func TruncateRunes(s string, max int) (string, bool) {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// TruncateBytes cuts s to at most max bytes without splitting a rune
func TruncateBytes(s string, max int) (string, bool) {
	if max < 0 || len(s) <= max {
		return s, false
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
