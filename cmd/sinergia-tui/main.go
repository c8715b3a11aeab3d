package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/config"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/project"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/tui"
)

func main() {
	var (
		projectFlag = flag.String("project", "", "Path to the project file (.json, .yaml or .yml)")
		configFlag  = flag.String("config", "", "Path to config file (default: user config dir)")
		logFlag     = flag.String("log", "", "Write diagnostics to this file")
	)
	flag.Parse()

	// The alternate screen owns the terminal; diagnostics go to a file or nowhere
	log.SetOutput(io.Discard)
	if *logFlag != "" {
		f, err := tea.LogToFile(*logFlag, "sinergia")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	settingsPath := *configFlag
	if settingsPath == "" {
		settingsPath = config.DefaultPath()
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	settings.ApplyEnv()

	opts := tui.Options{
		Settings:     settings,
		SettingsPath: settingsPath,
		Project:      model.NewProject(),
	}
	if path := *projectFlag; path != "" || flag.NArg() > 0 {
		if path == "" {
			path = flag.Arg(0)
		}
		p, err := project.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
			os.Exit(1)
		}
		opts.Project = p
		opts.ProjectPath = path
	}

	if err := tui.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
