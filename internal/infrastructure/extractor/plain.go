package extractor

import (
	"fmt"
	"unicode/utf8"
)

func extractPlainText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("plain text file is not valid UTF-8")
	}
	return string(raw), nil
}

// Legacy .doc has no local parser; the declared-supported format degrades to
// a conversion hint instead of failing the pipeline.
func extractDOC([]byte) (string, error) {
	return "DOC file format not fully supported yet. Please convert to PDF or DOCX.", nil
}
