// Package config provides configuration management for the Sinergia PDF
// client.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Environment overrides, including a local .env file
//   - Conversion to the option types of the other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Talks to https://sinergia-pdf-api.onrender.com
//	// 3 attempts, 30s per attempt, 1s back-off unit
//	// Saves to ~/Downloads
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	settings.ApplyEnv()
//
// # Saving Settings
//
//	settings.PreferredFolder = config.DefaultFolderLabel
//	err := settings.Save(config.DefaultPath())
//
// # Environment
//
//   - SINERGIA_API_URL: service base URL
//   - SINERGIA_DOWNLOADS_PATH: root directory for saved PDFs
//   - SINERGIA_FOLDER: preferred folder label under the downloads path
//   - SINERGIA_MAX_ATTEMPTS: transport attempts per generation
//   - SINERGIA_REQUEST_TIMEOUT: seconds per attempt
package config
