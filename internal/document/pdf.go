package document

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns one text entry per page, in page order. A page that has
// no content or fails to extract yields an empty string so numbering stays
// aligned with the source.
func ExtractPDF(content []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	texts := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		texts[i-1] = pageText(reader.Page(i))
	}
	return texts, nil
}

func pageText(page pdf.Page) (text string) {
	// The pdf library panics on some malformed content streams.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return t
}
