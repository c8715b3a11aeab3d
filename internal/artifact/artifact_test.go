package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/failure"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/http"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

var (
	fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	validPDF = append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("0"), 2048)...)
)

func TestValidate_AcceptsPDF(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"declared pdf", "application/pdf"},
		{"declared pdf with params", "application/pdf; charset=binary"},
		{"missing type", ""},
		{"generic type", "application/octet-stream"},
	}

	v := NewValidator(0, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := v.Validate(&http.Response{ContentType: tt.contentType, Body: validPDF}, "bichos", model.ActionCover, fixedNow)
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if a.Size != int64(len(validPDF)) {
				t.Errorf("Size = %d, want %d", a.Size, len(validPDF))
			}
			if !strings.Contains(a.ContentType, "pdf") {
				t.Errorf("ContentType = %q, want a pdf type", a.ContentType)
			}
			if a.Filename != "bichos_cover_20260314T150926535.pdf" {
				t.Errorf("Filename = %q", a.Filename)
			}
			if a.Action != model.ActionCover {
				t.Errorf("Action = %q, want cover", a.Action)
			}
		})
	}
}

func TestValidate_RejectsDisguisedErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "json error",
			contentType: "application/json",
			body:        `{"error":"imageUrls inválido"}`,
			wantMessage: "imageUrls inválido",
		},
		{
			name:        "json message",
			contentType: "application/json; charset=utf-8",
			body:        `{"message":"falha ao renderizar"}`,
			wantMessage: "falha ao renderizar",
		},
		{
			name:        "html page",
			contentType: "text/html",
			body:        "<html><body>Service Unavailable</body></html>",
			wantMessage: "resposta não é um PDF (text/html)",
		},
		{
			name:        "sniffed text",
			contentType: "",
			body:        "worker crashed",
			wantMessage: "resposta não é um PDF",
		},
	}

	v := NewValidator(0, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(&http.Response{ContentType: tt.contentType, Body: []byte(tt.body)}, "x", model.ActionInterior, fixedNow)

			var fe *failure.Error
			if !errors.As(err, &fe) || fe.Kind != failure.KindService {
				t.Fatalf("Validate() error = %v, want service error", err)
			}
			if !strings.Contains(fe.Message, tt.wantMessage) {
				t.Errorf("Message = %q, want it to contain %q", fe.Message, tt.wantMessage)
			}
			if fe.Body == "" {
				t.Error("error should carry the body excerpt")
			}
		})
	}
}

func TestValidate_TooSmall(t *testing.T) {
	body := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 31)...)
	if len(body) != 40 {
		t.Fatalf("fixture size = %d, want 40", len(body))
	}

	_, err := NewValidator(100, 10000).Validate(&http.Response{ContentType: "application/pdf", Body: body}, "x", model.ActionBackcover, fixedNow)
	if !failure.Is(err, failure.KindService) {
		t.Fatalf("Validate() error = %v, want service error", err)
	}
	if !strings.Contains(err.Error(), "too small") {
		t.Errorf("error = %q, want it to mention the size", err)
	}
}

func TestValidate_LargeNonPDFPasses(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 20000)
	a, err := NewValidator(100, 10000).Validate(&http.Response{ContentType: "text/plain", Body: body}, "x", model.ActionUnify, fixedNow)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if a.Size != 20000 {
		t.Errorf("Size = %d, want 20000", a.Size)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		stem   string
		action model.ActionKind
		want   string
	}{
		{"bichos", model.ActionInterior, "bichos_interior_20260314T150926535.pdf"},
		{"Livro: 1/2", model.ActionUnify, "Livro_ 1_2_unify_20260314T150926535.pdf"},
		{"", model.ActionCover, "livro_cover_20260314T150926535.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FileName(tt.stem, tt.action, fixedNow); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDirSaver_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Meus Livros de Colorir")
	s := NewDirSaver(dir, "Meus Livros de Colorir")

	a := &Artifact{Data: validPDF}
	if !s.Save(a, "bichos.pdf") {
		t.Fatal("Save() = false, want true")
	}
	if !s.Save(a, "bichos.pdf") {
		t.Fatal("second Save() = false, want true")
	}

	for _, name := range []string{"bichos.pdf", "bichos (1).pdf"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", name, err)
		}
		if !bytes.Equal(data, validPDF) {
			t.Errorf("%s content mismatch", name)
		}
	}
	if s.Location() != "Meus Livros de Colorir" {
		t.Errorf("Location() = %q", s.Location())
	}
}

func TestDirSaver_Failures(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if NewDirSaver(filepath.Join(blocker, "sub"), "").Save(&Artifact{Data: validPDF}, "a.pdf") {
		t.Error("Save() under a regular file should fail")
	}
	if NewDirSaver(t.TempDir(), "").Save(nil, "a.pdf") {
		t.Error("Save(nil) should fail")
	}
}
