package model

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle status of a project as shown to the user.
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectGenerating ProjectStatus = "generating"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectError      ProjectStatus = "error"
)

// StatusPtr returns a pointer to s, for building patches.
func StatusPtr(s ProjectStatus) *ProjectStatus {
	return &s
}

// PageFormat identifies a page size understood by the remote renderer.
type PageFormat string

const (
	PageFormatA4      PageFormat = "A4"
	PageFormatLetter  PageFormat = "LETTER"
	PageFormatAmazon  PageFormat = "AMAZON"
	PageFormatSquare  PageFormat = "SQUARE"
	PageFormatA5V     PageFormat = "A5-V"
	PageFormatA5H     PageFormat = "A5-H"
	PageFormatA4Twice PageFormat = "A4-2A5H"
)

// PageFormats lists the supported formats in display order.
var PageFormats = []PageFormat{
	PageFormatA4,
	PageFormatLetter,
	PageFormatAmazon,
	PageFormatSquare,
	PageFormatA5V,
	PageFormatA5H,
	PageFormatA4Twice,
}

// Label returns a human readable description of the format.
func (f PageFormat) Label() string {
	switch f {
	case PageFormatA4:
		return "A4 (210x297mm)"
	case PageFormatLetter:
		return "Carta (216x279mm)"
	case PageFormatAmazon:
		return "Amazon (215,9x279,4mm)"
	case PageFormatSquare:
		return "Quadrado (210x210mm)"
	case PageFormatA5V:
		return "A5 Vertical (148x210mm)"
	case PageFormatA5H:
		return "A5 Horizontal (210x148mm)"
	case PageFormatA4Twice:
		return "A4 - 2x A5H"
	default:
		return string(f)
	}
}

// Valid reports whether f is one of PageFormats.
func (f PageFormat) Valid() bool {
	for _, known := range PageFormats {
		if f == known {
			return true
		}
	}
	return false
}

// UploadedFile references a file already uploaded to remote storage.
type UploadedFile struct {
	// Filename is the original local name of the file.
	Filename string `json:"filename" yaml:"filename"`

	// URL is where the rendering service downloads the file from.
	URL string `json:"url" yaml:"url"`

	// Type is the MIME type reported at upload time.
	Type string `json:"type" yaml:"type"`
}

// Accepted reports whether the file is a page source the renderer accepts:
// any image, or a PDF.
func (f UploadedFile) Accepted() bool {
	return strings.HasPrefix(f.Type, "image/") || f.Type == "application/pdf"
}

// GeneratedPDF describes an artifact that was generated and delivered.
type GeneratedPDF struct {
	Type        ActionKind `json:"type" yaml:"type"`
	Filename    string     `json:"filename" yaml:"filename"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Downloaded  bool       `json:"downloaded" yaml:"downloaded"`
	Size        int64      `json:"size" yaml:"size"`
}

// ProjectState holds the book-layout parameters edited by the user.
//
// Zero values mean "not set"; the request builder substitutes defaults for
// every optional field. UploadedFiles order is the page order of the book.
type ProjectState struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	ProjectName string `json:"project_name" yaml:"project_name"`
	Filename    string `json:"filename" yaml:"filename"`

	PageFormat PageFormat `json:"page_format" yaml:"page_format"`

	HeaderText string `json:"header_text" yaml:"header_text"`
	HeaderFont string `json:"header_font" yaml:"header_font"`
	HeaderSize int    `json:"header_size" yaml:"header_size"`
	FooterText string `json:"footer_text" yaml:"footer_text"`
	FooterFont string `json:"footer_font" yaml:"footer_font"`
	FooterSize int    `json:"footer_size" yaml:"footer_size"`

	IncludePageMarker bool `json:"include_page_marker" yaml:"include_page_marker"`
	FillFullPage      bool `json:"fill_full_page" yaml:"fill_full_page"`

	QRLink  string `json:"qr_link" yaml:"qr_link"`
	LogoURL string `json:"logo_url" yaml:"logo_url"`

	UploadedFiles []UploadedFile `json:"uploaded_files" yaml:"uploaded_files"`
	GeneratedPDFs []GeneratedPDF `json:"generated_pdfs" yaml:"generated_pdfs"`

	Status ProjectStatus `json:"status" yaml:"status"`
}

// NewProject returns a draft project with the form's initial values.
func NewProject() ProjectState {
	return ProjectState{
		PageFormat: PageFormatA4,
		HeaderFont: "Arial",
		HeaderSize: 12,
		FooterFont: "Arial",
		FooterSize: 10,
		QRLink:     "https://sinergiahub.com",
		Status:     ProjectDraft,
	}
}

// ImageURLs returns the non-empty URLs of the accepted uploaded files in
// page order.
func (p ProjectState) ImageURLs() []string {
	urls := make([]string, 0, len(p.UploadedFiles))
	for _, f := range p.UploadedFiles {
		if !f.Accepted() || strings.TrimSpace(f.URL) == "" {
			continue
		}
		urls = append(urls, f.URL)
	}
	return urls
}

// HasImages reports whether at least one accepted file has a URL.
func (p ProjectState) HasImages() bool {
	return len(p.ImageURLs()) > 0
}

// HasGenerated reports whether any artifact has been generated before.
func (p ProjectState) HasGenerated() bool {
	return len(p.GeneratedPDFs) > 0
}

// ProjectPatch is a proposed change to a ProjectState. Nil or empty fields
// leave the project untouched.
type ProjectPatch struct {
	Status          *ProjectStatus
	AppendGenerated []GeneratedPDF
}

// Empty reports whether the patch changes nothing.
func (pp ProjectPatch) Empty() bool {
	return pp.Status == nil && len(pp.AppendGenerated) == 0
}

// Apply returns a copy of p with the patch applied. p itself is not modified.
func (p ProjectState) Apply(patch ProjectPatch) ProjectState {
	out := p
	out.UploadedFiles = append([]UploadedFile(nil), p.UploadedFiles...)
	out.GeneratedPDFs = append([]GeneratedPDF(nil), p.GeneratedPDFs...)

	if patch.Status != nil {
		out.Status = *patch.Status
	}
	out.GeneratedPDFs = append(out.GeneratedPDFs, patch.AppendGenerated...)
	return out
}
