package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPDF_MissingFile(t *testing.T) {
	if _, err := PDF(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPDF_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := PDF(path); err == nil {
		t.Fatalf("expected error for non-pdf content")
	}
}
