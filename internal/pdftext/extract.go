// Package pdftext pulls plain text out of PDF attachment bytes.
package pdftext

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract parses a PDF byte stream page by page and concatenates the
// extracted text with a newline after each page. It never fails: any parse
// error, including a parser panic on malformed input, is logged and yields
// the empty string.
func Extract(data []byte, logger *slog.Logger) (text string) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pdftext.extract.panic", "cause", fmt.Sprint(r))
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Error("pdftext.extract.open_error", "error", err)
		return ""
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdftext.extract.page_error", "page", i, "error", err)
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String()
}
