package artifact

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/failure"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/http"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/ioutils"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

// Default validation thresholds in bytes.
const (
	DefaultMinBytes         = 100
	DefaultSuspectTextBytes = 10000
)

const timestampLayout = "20060102T150405"

// Artifact is a validated PDF returned by the service.
type Artifact struct {
	Data        []byte
	ContentType string
	Size        int64
	Action      model.ActionKind

	// Filename is the suggested save name.
	Filename string
}

// Validator rejects responses that are not genuine PDFs.
type Validator struct {
	// MinBytes is the smallest accepted artifact.
	MinBytes int

	// SuspectTextBytes is the size below which a non-PDF body is treated
	// as an error message from the service.
	SuspectTextBytes int
}

// NewValidator returns a Validator. Non-positive thresholds use the
// defaults.
func NewValidator(minBytes, suspectTextBytes int) *Validator {
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	if suspectTextBytes <= 0 {
		suspectTextBytes = DefaultSuspectTextBytes
	}
	return &Validator{MinBytes: minBytes, SuspectTextBytes: suspectTextBytes}
}

// Validate checks resp and returns the artifact to save.
//
// Returns a service error if:
//   - the body is not a PDF and is small enough to be an error message
//   - the body is smaller than MinBytes
func (v *Validator) Validate(resp *http.Response, stem string, action model.ActionKind, now time.Time) (*Artifact, error) {
	contentType := resolveContentType(resp.ContentType, resp.Body)
	isPDF := strings.Contains(strings.ToLower(contentType), "pdf")

	if !isPDF && len(resp.Body) < v.SuspectTextBytes {
		return nil, failure.Service("validate", 0, describeTextBody(contentType, resp.Body), resp.Body)
	}
	if len(resp.Body) < v.MinBytes {
		return nil, failure.Service("validate", 0, fmt.Sprintf("artifact too small (%d bytes)", len(resp.Body)), nil)
	}

	return &Artifact{
		Data:        resp.Body,
		ContentType: contentType,
		Size:        int64(len(resp.Body)),
		Action:      action,
		Filename:    FileName(stem, action, now),
	}, nil
}

// FileName returns "<stem>_<action>_<timestamp>.pdf" with the stem
// sanitized for the file system.
func FileName(stem string, action model.ActionKind, now time.Time) string {
	stem = ioutils.SanitizeFileName(stem)
	if stem == "" {
		stem = "livro"
	}
	ts := now.Format(timestampLayout) + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
	return fmt.Sprintf("%s_%s_%s.pdf", stem, action, ts)
}

func resolveContentType(declared string, body []byte) string {
	d := strings.ToLower(strings.TrimSpace(declared))
	if d == "" || strings.HasPrefix(d, "application/octet-stream") || strings.HasPrefix(d, "binary/octet-stream") {
		return mimetype.Detect(body).String()
	}
	return declared
}

// describeTextBody extracts the error text of a JSON body such as
// {"error": "..."}; other bodies are described by their content type.
func describeTextBody(contentType string, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "message", "detail"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("resposta não é um PDF (%s)", contentType)
}
