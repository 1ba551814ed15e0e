package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	validPath := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(validPath, []byte("content"), 0600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	tests := []struct {
		name        string
		filename    string
		expectError bool
	}{
		{
			name:        "existing readable file",
			filename:    validPath,
			expectError: false,
		},
		{
			name:        "missing file",
			filename:    filepath.Join(dir, "missing.txt"),
			expectError: true,
		},
		{
			name:        "directory",
			filename:    dir,
			expectError: true,
		},
		{
			name:        "empty filename",
			filename:    "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.filename)
			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"resume.pdf", ".pdf"},
		{"resume.PDF", ".pdf"},
		{"notes.txt", ".txt"},
		{"archive.tar.gz", ".gz"},
		{"noextension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := GetFileExtension(tt.filename); got != tt.expected {
				t.Errorf("Expected extension '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestIsTextFile(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"job.txt", true},
		{"notes.md", true},
		{"notes.markdown", true},
		{"body.text", true},
		{"resume.pdf", false},
		{"data.json", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsTextFile(tt.filename); got != tt.expected {
				t.Errorf("IsTextFile(%s): expected %v, got %v", tt.filename, tt.expected, got)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1048576, "5.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatFileSize(tt.size); got != tt.expected {
				t.Errorf("FormatFileSize(%d): expected '%s', got '%s'", tt.size, tt.expected, got)
			}
		})
	}
}
