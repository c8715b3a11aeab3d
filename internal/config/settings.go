package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default values for the rendering service.
const (
	DefaultAPIBaseURL   = "https://sinergia-pdf-api.onrender.com"
	DefaultHealthPath   = "/health"
	DefaultGeneratePath = "/gerar-pdf"
	DefaultFolderLabel  = "Meus Livros de Colorir"
)

// Settings holds all configuration options.
type Settings struct {
	// Service settings
	APIBaseURL   string `json:"api_base_url"`
	HealthPath   string `json:"health_path"`
	GeneratePath string `json:"generate_path"`
	UserAgent    string `json:"user_agent"`

	// Transport settings (durations in seconds)
	MaxAttempts      int     `json:"max_attempts"`
	RequestTimeout   float64 `json:"request_timeout"`
	RetryBackoffUnit float64 `json:"retry_backoff_unit"`

	// Connectivity settings
	ProbeTimeout  float64 `json:"probe_timeout"`
	ProbeSchedule string  `json:"probe_schedule"` // cron spec, empty disables

	// Response validation
	MinArtifactBytes int `json:"min_artifact_bytes"`
	SuspectTextBytes int `json:"suspect_text_bytes"`

	// Download tracking
	HistoryLimit int     `json:"history_limit"`
	DismissGrace float64 `json:"dismiss_grace"`

	// Saving
	DownloadsPath   string `json:"downloads_path"`
	PreferredFolder string `json:"preferred_folder"`

	// Request defaults
	DefaultFilename   string `json:"default_filename"`
	DefaultPageFormat string `json:"default_page_format"`
	DefaultFont       string `json:"default_font"`
	DefaultHeaderSize int    `json:"default_header_size"`
	DefaultFooterSize int    `json:"default_footer_size"`
	DefaultQRLink     string `json:"default_qr_link"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		APIBaseURL:   DefaultAPIBaseURL,
		HealthPath:   DefaultHealthPath,
		GeneratePath: DefaultGeneratePath,
		UserAgent:    "SinergiaPDF",

		MaxAttempts:      3,
		RequestTimeout:   30,
		RetryBackoffUnit: 1,

		ProbeTimeout:  10,
		ProbeSchedule: "@every 5m",

		MinArtifactBytes: 100,
		SuspectTextBytes: 10000,

		HistoryLimit: 10,
		DismissGrace: 3,

		DownloadsPath:   filepath.Join(homeDir, "Downloads"),
		PreferredFolder: "",

		DefaultFilename:   "livro",
		DefaultPageFormat: "A4",
		DefaultFont:       "Arial",
		DefaultHeaderSize: 12,
		DefaultFooterSize: 10,
		DefaultQRLink:     "https://sinergiahub.com",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "sinergia-pdf", "settings.json")
}

// ApplyEnv overrides settings from the environment. Variables found in a
// .env file in the working directory are loaded first; variables already
// set in the process environment win.
func (s *Settings) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SINERGIA_API_URL"); v != "" {
		s.APIBaseURL = v
	}
	if v := os.Getenv("SINERGIA_DOWNLOADS_PATH"); v != "" {
		s.DownloadsPath = v
	}
	if v := os.Getenv("SINERGIA_FOLDER"); v != "" {
		s.PreferredFolder = v
	}
	if v := os.Getenv("SINERGIA_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.MaxAttempts = n
		}
	}
	if v := os.Getenv("SINERGIA_REQUEST_TIMEOUT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			s.RequestTimeout = f
		}
	}
}

// HealthURL returns the absolute liveness endpoint.
func (s *Settings) HealthURL() string {
	return joinURL(s.APIBaseURL, s.HealthPath)
}

// GenerateURL returns the absolute generation endpoint.
func (s *Settings) GenerateURL() string {
	return joinURL(s.APIBaseURL, s.GeneratePath)
}

// SaveDir returns the directory artifacts are written to when no explicit
// directory was chosen: the downloads path, plus the preferred folder label
// when one is set.
func (s *Settings) SaveDir() string {
	if s.PreferredFolder == "" {
		return s.DownloadsPath
	}
	return filepath.Join(s.DownloadsPath, s.PreferredFolder)
}

// Seconds converts a settings value in seconds to a time.Duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
