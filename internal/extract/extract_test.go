package extract

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"resumelens/internal/errors"
)

func testExtractor() *Extractor {
	return NewExtractor(errors.NewLogger(slog.LevelError))
}

func TestExtractTextFileNotFound(t *testing.T) {
	_, err := testExtractor().ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeFileNotFound {
		t.Errorf("Code = %s, want %s", appErr.Code, errors.ErrCodeFileNotFound)
	}
}

func TestExtractTextInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	if err := os.WriteFile(path, []byte("plain text masquerading as a PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := testExtractor().ExtractText(path)
	if err == nil {
		t.Fatal("expected error for invalid document")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeExtraction {
		t.Errorf("Type = %s, want %s", appErr.Type, errors.ErrorTypeExtraction)
	}
}

func TestCleanupRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	testExtractor().Cleanup(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}
}

func TestCleanupMissingFileIsQuiet(t *testing.T) {
	// Must not panic or propagate
	testExtractor().Cleanup(filepath.Join(t.TempDir(), "never-existed.pdf"))
}
