// Package project reads and writes project files.
//
// The format follows the file extension: .yaml and .yml use YAML, anything
// else JSON. Both use the snake_case keys of model.ProjectState.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/ioutils"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

// Load reads a project file. Unset fields keep the values of
// model.NewProject.
func Load(path string) (model.ProjectState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ProjectState{}, fmt.Errorf("failed to read project: %w", err)
	}

	p := model.NewProject()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &p)
	} else {
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return model.ProjectState{}, fmt.Errorf("failed to parse project %s: %w", filepath.Base(path), err)
	}

	if p.PageFormat != "" && !p.PageFormat.Valid() {
		return model.ProjectState{}, fmt.Errorf("project %s: unknown page format %q", filepath.Base(path), p.PageFormat)
	}
	return p, nil
}

// Save writes p to path atomically, creating the directory if needed.
func Save(path string, p model.ProjectState) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(path, data)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
