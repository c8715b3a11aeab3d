package config

import (
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/artifact"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/http"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/request"
)

// ToBuilderDefaults converts settings to request builder defaults.
func (s *Settings) ToBuilderDefaults() request.Defaults {
	format := model.PageFormat(s.DefaultPageFormat)
	if !format.Valid() {
		format = model.PageFormatA4
	}
	return request.Defaults{
		Filename:   s.DefaultFilename,
		PageFormat: format,
		Font:       s.DefaultFont,
		HeaderSize: s.DefaultHeaderSize,
		FooterSize: s.DefaultFooterSize,
		QRLink:     s.DefaultQRLink,
	}
}

// ToSendOptions converts settings to transport options.
func (s *Settings) ToSendOptions() http.Options {
	return http.Options{
		MaxAttempts: s.MaxAttempts,
		Timeout:     Seconds(s.RequestTimeout),
		BackoffUnit: Seconds(s.RetryBackoffUnit),
	}
}

// ToValidator creates a response validator with the configured thresholds.
func (s *Settings) ToValidator() *artifact.Validator {
	return artifact.NewValidator(s.MinArtifactBytes, s.SuspectTextBytes)
}

// ToSaver creates the saver for generated PDFs. An explicit outDir wins;
// otherwise files go to SaveDir and the preferred folder label is shown.
func (s *Settings) ToSaver(outDir string) *artifact.DirSaver {
	if outDir != "" {
		return artifact.NewDirSaver(outDir, outDir)
	}
	label := s.PreferredFolder
	if label == "" {
		label = "Downloads"
	}
	return artifact.NewDirSaver(s.SaveDir(), label)
}
