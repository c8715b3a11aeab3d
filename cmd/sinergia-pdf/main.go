package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/config"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/download"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/failure"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/project"
)

func main() {
	// Command line flags
	var (
		projectFlag = flag.String("project", "", "Path to the project file (.json, .yaml or .yml)")
		actionFlag  = flag.String("action", "interior", "Action to run: interior, cover, backcover, unify or all")
		configFlag  = flag.String("config", "", "Path to config file (default: user config dir)")
		outputFlag  = flag.String("out", "", "Output directory (overrides config)")
		folderFlag  = flag.String("folder", "", "Preferred folder inside the downloads path")
		yesFlag     = flag.Bool("yes", false, "Never prompt: generate even when the service looks offline")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		checkFlag   = flag.Bool("check", false, "Only check whether the service is online")
	)

	flag.Parse()

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *checkFlag {
		os.Exit(check(ctx, settings))
	}

	if *projectFlag == "" && flag.NArg() == 0 {
		fmt.Println("Sinergia PDF - Generate coloring book PDFs")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  sinergia-pdf -project <file> [-action interior|cover|backcover|unify|all] [options]")
		fmt.Println("  sinergia-pdf <file> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: sinergia-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	projectPath := *projectFlag
	if projectPath == "" {
		projectPath = flag.Arg(0)
	}
	proj, err := project.Load(projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project: %v\n", err)
		os.Exit(1)
	}

	actions, err := parseActions(*actionFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	switch {
	case *folderFlag != "":
		settings.PreferredFolder = *folderFlag
	case *outputFlag == "" && settings.PreferredFolder == "" && !*yesFlag:
		folder, err := askFolder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(130)
		}
		settings.PreferredFolder = folder
		if err := settings.Save(settingsPath); err != nil {
			slog.Warn("could not save preferred folder", "error", err)
		}
	}

	// Project patches may arrive from several goroutines
	var mu sync.Mutex
	onPatch := func(patch model.ProjectPatch) {
		mu.Lock()
		defer mu.Unlock()
		proj = proj.Apply(patch)
		if err := project.Save(projectPath, proj); err != nil {
			slog.Warn("could not save project", "path", projectPath, "error", err)
		}
	}

	manager := download.NewManager(settings, printer(*verboseFlag),
		download.WithSaver(settings.ToSaver(*outputFlag)),
		download.WithProjectUpdate(onPatch),
		download.WithOverride(func(status model.ConnectivityStatus) bool {
			if *yesFlag {
				return true
			}
			return confirmOffline(status)
		}),
	)
	defer manager.Tracker().Close()

	fmt.Println("📚 Sinergia PDF")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	outcomes := manager.GenerateAll(ctx, proj, actions...)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if ctx.Err() != nil {
		fmt.Println("Generation cancelled.")
		os.Exit(130)
	}
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("✗ %s\n%s\n\n", o.Action.Label(), failure.UserMessage(o.Err))
			continue
		}
		fmt.Printf("✓ %s: %s (%s) em %s\n", o.Action.Label(), o.Result.Filename, download.FormatSize(o.Result.Size), o.Result.Location)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func parseActions(value string) ([]model.ActionKind, error) {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return model.Actions, nil
	}

	var actions []model.ActionKind
	for _, part := range strings.Split(value, ",") {
		a, err := model.ParseActionKind(part)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func printer(verbose bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}
		// Failures are summarised at the end
		if event.Kind == download.EventGenerationFailed {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}
}

func check(ctx context.Context, settings *config.Settings) int {
	mon := download.NewManager(settings, nil).Monitor()
	status := mon.Probe(ctx)
	if status.Online {
		fmt.Printf("● API online (%s)\n", settings.APIBaseURL)
		return 0
	}
	fmt.Printf("● API offline (%s): %s\n", settings.APIBaseURL, status.LastError)
	return 1
}

func confirmOffline(status model.ConnectivityStatus) bool {
	var ok bool
	prompt := &survey.Confirm{
		Message: "A API parece estar offline. Deseja tentar gerar o PDF mesmo assim?",
		Help:    status.LastError,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false
	}
	return ok
}

func askFolder() (string, error) {
	var folder string
	prompt := &survey.Input{
		Message: "Pasta onde salvar os PDFs:",
		Default: config.DefaultFolderLabel,
	}
	err := survey.AskOne(prompt, &folder, survey.WithValidator(survey.Required))
	if errors.Is(err, terminal.InterruptErr) {
		return "", errors.New("cancelled")
	}
	return strings.TrimSpace(folder), err
}
