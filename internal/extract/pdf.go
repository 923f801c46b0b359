package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF extracts text from a PDF via pdfcpu. pdfcpu exposes page
// content streams rather than laid-out text, so the string operands of
// the text-showing operators (Tj, TJ, ', ") are recovered from each
// stream. Covers uncompressed-text PDFs; image-only or exotic encodings
// come back empty and are reported unsupported upstream.
func (s *Service) extractPDF(data []byte) (string, error) {
	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("extract_%d.pdf", os.Getpid()))
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	defer os.Remove(tempFile)

	outDir := filepath.Join(s.tempDir, fmt.Sprintf("pages_%d", os.Getpid()))
	if err := os.MkdirAll(outDir, 0700); err != nil {
		return "", fmt.Errorf("create page dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("extract pdf content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("read page dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return pageNumber(names[i]) < pageNumber(names[j])
	})

	var sb strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			continue
		}

		text := textFromContentStream(string(content))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", errors.New("no extractable text in pdf")
	}

	return sb.String(), nil
}

func pageNumber(name string) int {
	var n int
	if _, err := fmt.Sscanf(name, "page_%d", &n); err == nil {
		return n
	}
	fmt.Sscanf(name, "%d", &n)
	return n
}

// textFromContentStream scans a PDF content stream and collects the
// string operands fed to text-showing operators.
func textFromContentStream(content string) string {
	var sb strings.Builder
	var pending []string

	i := 0
	for i < len(content) {
		c := content[i]

		switch c {
		case '(':
			str, next := parsePDFString(content, i)
			pending = append(pending, str)
			i = next
			continue
		case 'T':
			if i+1 < len(content) && (content[i+1] == 'j' || content[i+1] == 'J') {
				flushText(&sb, pending)
				pending = pending[:0]
				i += 2
				continue
			}
		case '\'', '"':
			flushText(&sb, pending)
			pending = pending[:0]
		case '%':
			// Comment runs to end of line.
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}
		i++
	}

	return strings.TrimSpace(sb.String())
}

// parsePDFString reads a parenthesized PDF string literal starting at
// the '(' at position i, honoring escapes and nested parentheses.
func parsePDFString(content string, i int) (string, int) {
	var sb strings.Builder
	depth := 0

	for ; i < len(content); i++ {
		c := content[i]

		switch c {
		case '\\':
			if i+1 < len(content) {
				i++
				switch content[i] {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case 'r', 'f', 'b':
					// layout escapes carry no text
				default:
					sb.WriteByte(content[i])
				}
			}
		case '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			if depth > 0 {
				sb.WriteByte(c)
			}
		}
	}

	return sb.String(), i
}

func flushText(sb *strings.Builder, parts []string) {
	if len(parts) == 0 {
		return
	}
	for _, p := range parts {
		sb.WriteString(p)
	}
	sb.WriteByte('\n')
}
