package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
)

const maxSourceBytes = 32 << 20

// Extractor turns stored uploads into plain text. Plain text, PDF and XLSX are supported.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, file domain.StoredFile) (string, error) {
	reader, err := e.storage.Open(ctx, file.Key)
	if err != nil {
		return "", fmt.Errorf("open source file: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(io.LimitReader(reader, maxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}
	if len(raw) > maxSourceBytes {
		return "", domain.Invalid("extract text", "%s exceeds %d bytes", file.Filename, maxSourceBytes)
	}

	var text string
	switch detectFormat(file, raw) {
	case formatPDF:
		text, err = extractPDF(raw)
	case formatXLSX:
		text, err = extractXLSX(raw)
	default:
		if !utf8.Valid(raw) {
			return "", domain.Invalid("extract text", "unsupported binary format: %s", file.Filename)
		}
		text = string(raw)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("%s: %w", file.Filename, err))
	}
	return strings.TrimSpace(text), nil
}

type format int

const (
	formatText format = iota
	formatPDF
	formatXLSX
)

func detectFormat(file domain.StoredFile, raw []byte) format {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mime := strings.ToLower(file.MimeType)
	switch {
	case ext == ".pdf" || mime == "application/pdf" || bytes.HasPrefix(raw, []byte("%PDF-")):
		return formatPDF
	case ext == ".xlsx" || strings.Contains(mime, "spreadsheetml"):
		return formatXLSX
	default:
		return formatText
	}
}

// extractPDF recovers from parser panics on malformed documents.
func extractPDF(raw []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	doc, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}
	return buf.String(), nil
}

// extractXLSX renders every sheet as a heading followed by tab separated rows.
func extractXLSX(raw []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", sheet)
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}
