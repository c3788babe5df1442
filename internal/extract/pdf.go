package extract

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor extracts text from PDF content streams. pdfcpu handles the
// cross-reference table and stream decoding; the text-showing operators
// (Tj, ', " and TJ) are decoded here. Documents whose fonts use custom
// encodings may come out imperfect, which matches the tolerance of the
// downstream summarizer.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			return "", fmt.Errorf("extract page %d content: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read page %d content: %w", pageNr, err)
		}
		pageText := decodeContentText(content)
		if pageText != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(pageText)
		}
	}
	return sb.String(), nil
}

// decodeContentText scans a decoded content stream for string operands of
// the text-showing operators and stitches them together. Literal strings
// are parenthesized with backslash escapes; hex strings sit between angle
// brackets. TJ arrays interleave strings with kerning numbers, which are
// skipped.
func decodeContentText(content []byte) string {
	var sb strings.Builder
	i := 0
	for i < len(content) {
		switch content[i] {
		case '(':
			s, next := readLiteralString(content, i)
			sb.WriteString(s)
			i = next
		case '<':
			// "<<" opens a dictionary, not a string.
			if i+1 < len(content) && content[i+1] == '<' {
				i += 2
				continue
			}
			s, next := readHexString(content, i)
			sb.WriteString(s)
			i = next
		case 'T':
			// Td, TD and T* move the text cursor to a new line position;
			// reflect that as whitespace so words don't run together.
			if i+1 < len(content) && (content[i+1] == 'd' || content[i+1] == 'D' || content[i+1] == '*') {
				sb.WriteByte(' ')
			}
			i++
		default:
			i++
		}
	}
	return strings.TrimSpace(collapseSpaces(sb.String()))
}

// readLiteralString consumes a (...) string starting at the opening
// parenthesis and returns its decoded value plus the index just past the
// closing parenthesis. Balanced nested parentheses are legal in PDF.
func readLiteralString(content []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0
	i := start
	for i < len(content) {
		c := content[i]
		switch c {
		case '\\':
			if i+1 < len(content) {
				sb.WriteString(decodeEscape(content[i+1]))
				i += 2
				continue
			}
			i++
		case '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

func decodeEscape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r', 'f', 'b':
		return ""
	case '(', ')', '\\':
		return string(c)
	default:
		return string(c)
	}
}

// readHexString consumes a <...> string and returns its decoded value
// plus the index just past the closing bracket.
func readHexString(content []byte, start int) (string, int) {
	end := bytes.IndexByte(content[start:], '>')
	if end < 0 {
		return "", len(content)
	}
	raw := content[start+1 : start+end]
	cleaned := make([]byte, 0, len(raw))
	for _, c := range raw {
		if isHexDigit(c) {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned)%2 == 1 {
		cleaned = append(cleaned, '0') // PDF pads an odd final digit
	}
	decoded, err := hex.DecodeString(string(cleaned))
	if err != nil {
		return "", start + end + 1
	}
	return string(decoded), start + end + 1
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
