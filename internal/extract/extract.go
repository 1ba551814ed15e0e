// Package extract pulls plain text out of uploaded resume documents.
package extract

import (
	"os"
	"strings"

	"resumelens/internal/errors"
	"resumelens/internal/types"
	"resumelens/internal/utils"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// Extractor converts resume documents into plain text
type Extractor struct {
	logger *errors.Logger
}

// NewExtractor creates a document text extractor
func NewExtractor(logger *errors.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractText reads the PDF at path and returns its plain text with a fresh
// extraction ID. Pages that fail to decode are skipped; the extraction fails
// only when no text at all could be recovered.
func (e *Extractor) ExtractText(path string) (*types.ExtractionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "document not found", err).
				WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "document not readable", err).
			WithContext("path", path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to open PDF", err).
			WithContext("path", path)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPages := r.NumPage()
	skipped := 0

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			skipped++
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			skipped++
			e.logger.Warn("Skipping unreadable page",
				"page", pageIndex,
				"error", err.Error())
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return nil, errors.NewExtractionError(errors.ErrCodeEmptyDocument, "no text content found in document", nil).
			WithContext("path", path).
			WithContext("pages", totalPages)
	}

	e.logger.Debug("Extracted document text",
		"pages", totalPages,
		"skipped_pages", skipped,
		"document_size", utils.FormatFileSize(info.Size()),
		"characters", len(text))

	return &types.ExtractionResult{
		ID:   uuid.NewString(),
		Text: text,
	}, nil
}

// Cleanup removes a temporary upload. Failure is logged, never propagated;
// a leftover temp file must not fail the request that produced it.
func (e *Extractor) Cleanup(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("Failed to remove temporary file",
			"path", path,
			"error", err.Error())
	}
}
