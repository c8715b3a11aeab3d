package ioutils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Livro de Colorir", "Livro de Colorir"},
		{"Livro: Bichos/1", "Livro_ Bichos_1"},
		{"capa...", "capa"},
		{"Meu   livro  ", "Meu livro"},
		{"a<b>c|d?e*f", "a_b_c_d_e_f"},
		{"  espaço  ", "espaço"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeFileName(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "livro.pdf")

	if err := WriteFileAtomic(path, []byte("%PDF-1.4")); err != nil {
		t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("content = %q, want %q", data, "%PDF-1.4")
	}
	if _, err := os.Stat(path + PartSuffix); !os.IsNotExist(err) {
		t.Error("temporary .part file should not remain")
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "livro.pdf")
	if err := WriteFileAtomic(path, []byte("x")); err == nil {
		t.Error("WriteFileAtomic() into a missing directory should fail")
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	if got, want := UniquePath(dir, "livro.pdf"), filepath.Join(dir, "livro.pdf"); got != want {
		t.Errorf("UniquePath() = %q, want %q", got, want)
	}

	for _, name := range []string{"livro.pdf", "livro (1).pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if got, want := UniquePath(dir, "livro.pdf"), filepath.Join(dir, "livro (2).pdf"); got != want {
		t.Errorf("UniquePath() = %q, want %q", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() unexpected error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("directory %s was not created", path)
	}
	if err := EnsureDir(path); err != nil {
		t.Errorf("EnsureDir() on existing dir: %v", err)
	}
}
