package request

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/failure"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/http"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

// Defaults holds the values substituted for unset project fields.
type Defaults struct {
	Filename   string
	PageFormat model.PageFormat
	Font       string
	HeaderSize int
	FooterSize int
	QRLink     string
}

// DefaultDefaults returns the values the web form starts with.
func DefaultDefaults() Defaults {
	return Defaults{
		Filename:   "livro",
		PageFormat: model.PageFormatA4,
		Font:       "Arial",
		HeaderSize: 12,
		FooterSize: 10,
		QRLink:     "https://sinergiahub.com",
	}
}

// GenerationRequest is a fully populated snapshot of a project for one
// action. Build never returns a request with an empty required field.
type GenerationRequest struct {
	Action           model.ActionKind
	Filename         string
	PageFormat       model.PageFormat
	HeaderText       string
	HeaderFont       string
	HeaderSize       int
	FooterText       string
	FooterFont       string
	FooterSize       int
	InsertPageMarker bool
	FillFullPage     bool
	QRLink           string
	ImageURLs        []string
	LogoURL          string
}

// Field is one form field of the encoded payload.
type Field struct {
	Name  string
	Value string
}

// Builder maps project state to generation requests.
type Builder struct {
	defaults Defaults
}

// NewBuilder creates a Builder. Zero fields of d fall back to
// DefaultDefaults.
func NewBuilder(d Defaults) *Builder {
	def := DefaultDefaults()
	if d.Filename != "" {
		def.Filename = d.Filename
	}
	if d.PageFormat != "" {
		def.PageFormat = d.PageFormat
	}
	if d.Font != "" {
		def.Font = d.Font
	}
	if d.HeaderSize > 0 {
		def.HeaderSize = d.HeaderSize
	}
	if d.FooterSize > 0 {
		def.FooterSize = d.FooterSize
	}
	if d.QRLink != "" {
		def.QRLink = d.QRLink
	}
	return &Builder{defaults: def}
}

// Build derives the request for action from project. It performs no I/O
// and does not modify project.
//
// Returns a validation error if:
//   - action is unknown
//   - action needs images (interior, cover) and the project has none
//   - action is unify and nothing was generated yet
func (b *Builder) Build(project model.ProjectState, action model.ActionKind) (*GenerationRequest, error) {
	if err := checkAction(project, action); err != nil {
		return nil, err
	}

	d := b.defaults
	return &GenerationRequest{
		Action:           action,
		Filename:         orDefault(project.Filename, d.Filename),
		PageFormat:       model.PageFormat(orDefault(string(project.PageFormat), string(d.PageFormat))),
		HeaderText:       project.HeaderText,
		HeaderFont:       orDefault(project.HeaderFont, d.Font),
		HeaderSize:       positiveOr(project.HeaderSize, d.HeaderSize),
		FooterText:       project.FooterText,
		FooterFont:       orDefault(project.FooterFont, d.Font),
		FooterSize:       positiveOr(project.FooterSize, d.FooterSize),
		InsertPageMarker: project.IncludePageMarker,
		FillFullPage:     project.FillFullPage,
		QRLink:           orDefault(project.QRLink, d.QRLink),
		ImageURLs:        project.ImageURLs(),
		LogoURL:          strings.TrimSpace(project.LogoURL),
	}, nil
}

// CheckPreconditions validates what the orchestrator needs before touching
// the network: a project name, an output filename and the action's own
// requirements.
func CheckPreconditions(project model.ProjectState, action model.ActionKind) error {
	var missing []string
	if strings.TrimSpace(project.ProjectName) == "" {
		missing = append(missing, "nome do projeto")
	}
	if strings.TrimSpace(project.Filename) == "" {
		missing = append(missing, "nome do arquivo PDF")
	}
	if len(missing) > 0 {
		return failure.Validation("check", "campos obrigatórios ausentes: %s", strings.Join(missing, ", "))
	}
	return checkAction(project, action)
}

func checkAction(project model.ProjectState, action model.ActionKind) error {
	if !action.Valid() {
		return failure.Validation("build", "ação desconhecida %q", action)
	}
	if action.RequiresImages() && !project.HasImages() {
		return failure.Validation("build", "faça upload de pelo menos uma imagem para gerar %s", action.Label())
	}
	if action == model.ActionUnify && !project.HasGenerated() {
		return failure.Validation("build", "nenhum PDF gerado para unificar")
	}
	return nil
}

// Fields returns the form fields in the order they are sent. imageUrls is
// repeated once per image, in page order; logoUrl is present only when set.
func (r *GenerationRequest) Fields() []Field {
	fields := []Field{
		{"filename", r.Filename},
		{"pageFormat", string(r.PageFormat)},
		{"action", r.Action.RemoteAction()},
		{"headerText", r.HeaderText},
		{"headerFont", r.HeaderFont},
		{"headerSize", strconv.Itoa(r.HeaderSize)},
		{"footerText", r.FooterText},
		{"footerFont", r.FooterFont},
		{"footerSize", strconv.Itoa(r.FooterSize)},
		{"insertPageMarker", strconv.FormatBool(r.InsertPageMarker)},
		{"fillFullPage", strconv.FormatBool(r.FillFullPage)},
		{"qrLink", r.QRLink},
	}
	for _, u := range r.ImageURLs {
		fields = append(fields, Field{"imageUrls", u})
	}
	if r.LogoURL != "" {
		fields = append(fields, Field{"logoUrl", r.LogoURL})
	}
	return fields
}

// Encode renders the request as a multipart/form-data payload. The boundary
// is derived from the field values, so equal requests encode to equal bytes.
func (r *GenerationRequest) Encode() (http.Payload, error) {
	fields := r.Fields()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundaryFor(fields)); err != nil {
		return http.Payload{}, err
	}
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return http.Payload{}, err
		}
	}
	if err := w.Close(); err != nil {
		return http.Payload{}, err
	}

	return http.Payload{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}

func boundaryFor(fields []Field) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write([]byte(f.Value))
		h.Write([]byte{0})
	}
	return "sinergia" + hex.EncodeToString(h.Sum(nil))[:40]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
