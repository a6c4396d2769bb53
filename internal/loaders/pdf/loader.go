// Package pdf extracts text from local PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Loader extracts the plain text of a local PDF file. The file handle is
// scoped to the Load call; the whole file is read into memory before
// parsing.
type Loader struct{}

// Compile-time interface check.
var _ driven.DocumentLoader = (*Loader)(nil)

// New creates a PDF loader.
func New() *Loader {
	return &Loader{}
}

// SourceType returns the type of source this loader produces.
func (l *Loader) SourceType() domain.SourceType {
	return domain.SourcePDF
}

// Supports reports whether the source name looks like a PDF path.
func (l *Loader) Supports(sourceName string) bool {
	if strings.HasPrefix(sourceName, "http://") || strings.HasPrefix(sourceName, "https://") {
		return false
	}
	return strings.EqualFold(filepath.Ext(sourceName), ".pdf")
}

// Load reads and extracts the PDF at the given path. Pages that fail to
// parse are skipped; a document with no extractable text at all is an error.
func (l *Loader) Load(ctx context.Context, sourceName string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}

	data, err := readFile(sourceName)
	if err != nil {
		return domain.Document{}, err
	}

	content, pageCount, err := extractText(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parsing %s: %w", sourceName, err)
	}
	if content == "" {
		return domain.Document{}, fmt.Errorf("%s: %w", sourceName, domain.ErrEmptyDocument)
	}

	logger.Debug("extracted %d chars from %d pages of %s", len(content), pageCount, sourceName)

	return domain.Document{
		SourceType: domain.SourcePDF,
		SourceName: filepath.Base(sourceName),
		Title:      strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName)),
		Content:    content,
		IngestedAt: time.Now(),
	}, nil
}

// readFile reads the whole file into memory so the handle can be closed
// before parsing begins.
func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.Warn("closing %s: %v", path, cerr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}
	return data, nil
}

func extractText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	pageCount := reader.NumPage()
	var content strings.Builder

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to parse
			continue
		}

		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(strings.TrimSpace(text))
	}

	return content.String(), pageCount, nil
}
