package extract

import (
	"context"
	"strings"
	"unicode/utf8"
)

// PlainTextExtractor decodes text/plain bytes directly. Invalid UTF-8
// sequences are replaced rather than failing the job, since text files in
// the wild are frequently mislabeled latin-1.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
