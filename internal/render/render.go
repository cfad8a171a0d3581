// Package render turns model output into HTML for the results area.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// HTML converts markdown to HTML. Raw HTML in the input is not passed
// through.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
