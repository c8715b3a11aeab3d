// Package tui provides a Bubble Tea terminal user interface for generating
// the PDFs of a project.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/config"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/download"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/project"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateReady State = iota
	StateConfirmOffline
	StateFolderInput
)

const maxLogs = 8

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Options configures Run.
type Options struct {
	Settings     *config.Settings
	SettingsPath string
	Project      model.ProjectState
	ProjectPath  string // empty: patches are kept in memory only
}

// bridge forwards messages from manager goroutines to the program.
type bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func (b *bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *bridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	spinner   spinner.Model
	progress  progress.Model
	textInput textinput.Model

	opts    Options
	project model.ProjectState
	manager *download.Manager

	connectivity model.ConnectivityStatus
	records      []model.DownloadRecord
	history      []model.DownloadRecord
	logs         []LogEntry
	running      int

	// Pending offline confirmation
	confirm *ConfirmOfflineMsg

	showHistory bool
	verbose     bool

	ctx    context.Context
	cancel context.CancelFunc

	width int
}

// Message types
type (
	// ProgressMsg is sent for every manager event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ConnectivityMsg is sent when the service status changes.
	ConnectivityMsg struct {
		Status model.ConnectivityStatus
	}

	// ConfirmOfflineMsg asks whether to generate while offline. The answer
	// goes to Reply.
	ConfirmOfflineMsg struct {
		Status model.ConnectivityStatus
		Reply  chan bool
	}

	// PatchMsg carries a project change proposed by the manager.
	PatchMsg struct {
		Patch model.ProjectPatch
	}

	// GenerateDoneMsg is sent when a generation finishes.
	GenerateDoneMsg struct {
		Action model.ActionKind
		Result *download.Result
		Err    error
	}

	// TickMsg is for periodic record updates.
	TickMsg struct{}
)

func newModel(opts Options, b *bridge) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 30

	ti := textinput.New()
	ti.Placeholder = config.DefaultFolderLabel
	ti.CharLimit = 120
	ti.Width = 40

	ctx, cancel := context.WithCancel(context.Background())

	manager := download.NewManager(opts.Settings,
		func(event download.ProgressEvent) { b.send(ProgressMsg{Event: event}) },
		download.WithProjectUpdate(func(p model.ProjectPatch) { b.send(PatchMsg{Patch: p}) }),
		download.WithOverride(func(status model.ConnectivityStatus) bool {
			reply := make(chan bool, 1)
			b.send(ConfirmOfflineMsg{Status: status, Reply: reply})
			select {
			case ok := <-reply:
				return ok
			case <-ctx.Done():
				return false
			}
		}),
	)

	return Model{
		state:     StateReady,
		spinner:   sp,
		progress:  prog,
		textInput: ti,
		opts:      opts,
		project:   opts.Project,
		manager:   manager,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tickRecords())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width/3, 10), 40)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.addLog(msg.Event)

	case ConnectivityMsg:
		m.connectivity = msg.Status

	case ConfirmOfflineMsg:
		if m.confirm != nil {
			msg.Reply <- false
			break
		}
		m.confirm = &msg
		m.state = StateConfirmOffline

	case PatchMsg:
		m.project = m.project.Apply(msg.Patch)
		if m.opts.ProjectPath != "" {
			if err := project.Save(m.opts.ProjectPath, m.project); err != nil {
				m.addLog(download.ProgressEvent{Message: fmt.Sprintf("Falha ao salvar o projeto: %v", err), Level: download.LevelError})
			}
		}

	case GenerateDoneMsg:
		m.running--
		m.refresh()

	case TickMsg:
		m.refresh()
		cmds = append(cmds, m.tickRecords())
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}

	switch m.state {
	case StateConfirmOffline:
		switch msg.String() {
		case "y", "s", "enter":
			m.answer(true)
		case "n", "esc":
			m.answer(false)
		}
		return m, nil

	case StateFolderInput:
		switch msg.String() {
		case "enter":
			m.setFolder(strings.TrimSpace(m.textInput.Value()))
			m.state = StateReady
			m.textInput.Blur()
			return m, nil
		case "esc":
			m.state = StateReady
			m.textInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		m.shutdown()
		return m, tea.Quit
	case "i":
		return m.start(model.ActionInterior)
	case "c":
		return m.start(model.ActionCover)
	case "b":
		return m.start(model.ActionBackcover)
	case "u":
		return m.start(model.ActionUnify)
	case "a":
		return m.startAll()
	case "t":
		return m, m.probe()
	case "h":
		m.showHistory = !m.showHistory
	case "v":
		m.verbose = !m.verbose
	case "x":
		for _, rec := range m.records {
			if rec.Status.Terminal() {
				m.manager.Tracker().Dismiss(rec.ID)
			}
		}
		m.refresh()
	case "f":
		m.state = StateFolderInput
		m.textInput.SetValue(m.opts.Settings.PreferredFolder)
		return m, m.textInput.Focus()
	}
	return m, nil
}

func (m *Model) answer(ok bool) {
	if m.confirm != nil {
		m.confirm.Reply <- ok
		m.confirm = nil
	}
	m.state = StateReady
}

func (m *Model) setFolder(folder string) {
	m.opts.Settings.PreferredFolder = folder
	if m.opts.SettingsPath != "" {
		if err := m.opts.Settings.Save(m.opts.SettingsPath); err != nil {
			m.addLog(download.ProgressEvent{Message: fmt.Sprintf("Falha ao salvar configurações: %v", err), Level: download.LevelError})
			return
		}
	}
	m.manager.SetSaver(m.opts.Settings.ToSaver(""))
	m.addLog(download.ProgressEvent{
		Message: fmt.Sprintf("PDFs serão salvos em %s", m.opts.Settings.SaveDir()),
		Level:   download.LevelInfo,
	})
}

func (m Model) start(action model.ActionKind) (tea.Model, tea.Cmd) {
	m.running++
	ctx, mgr, p := m.ctx, m.manager, m.project
	return m, func() tea.Msg {
		res, err := mgr.Generate(ctx, p, action)
		return GenerateDoneMsg{Action: action, Result: res, Err: err}
	}
}

func (m Model) startAll() (tea.Model, tea.Cmd) {
	m.running++
	ctx, mgr, p := m.ctx, m.manager, m.project
	return m, func() tea.Msg {
		outcomes := mgr.GenerateAll(ctx, p)
		for _, o := range outcomes {
			if o.Err != nil {
				return GenerateDoneMsg{Action: o.Action, Err: o.Err}
			}
		}
		return GenerateDoneMsg{}
	}
}

func (m Model) probe() tea.Cmd {
	ctx, mon := m.ctx, m.manager.Monitor()
	return func() tea.Msg {
		return ConnectivityMsg{Status: mon.Probe(ctx)}
	}
}

func (m *Model) refresh() {
	m.records = m.manager.Tracker().Visible()
	m.history = m.manager.Tracker().History()
}

func (m *Model) addLog(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) shutdown() {
	if m.confirm != nil {
		m.confirm.Reply <- false
		m.confirm = nil
	}
	m.cancel()
}

// tickRecords returns a command to poll the tracker.
func (m Model) tickRecords() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sinergia PDF"))
	b.WriteString("\n")
	b.WriteString(m.viewProject())
	b.WriteString("\n")
	b.WriteString(m.viewConnectivity())
	b.WriteString("\n")
	if m.running > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%d geração(ões) em andamento", m.running)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case StateConfirmOffline:
		b.WriteString(m.viewConfirm())
		b.WriteString("\n\n")
	case StateFolderInput:
		b.WriteString(subtitleStyle.Render("Pasta preferida para salvar os PDFs:"))
		b.WriteString("\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.viewRecords())
	b.WriteString(m.viewLastGenerated())
	if m.showHistory {
		b.WriteString(m.viewHistory())
	}
	b.WriteString(m.renderLogs())

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewProject() string {
	p := m.project
	name := p.ProjectName
	if name == "" {
		name = "(sem nome)"
	}
	return dimStyle.Render(fmt.Sprintf("%s · %s · %s · %d imagem(ns) · %s",
		name, p.Filename, p.PageFormat.Label(), len(p.ImageURLs()), p.Status))
}

func (m Model) viewConnectivity() string {
	s := m.connectivity
	switch {
	case s.Checking:
		return m.spinner.View() + " " + infoStyle.Render("Verificando API...")
	case !s.Checked():
		return dimStyle.Render("○ API não verificada (t: testar)")
	case s.Online:
		return successStyle.Render(fmt.Sprintf("● API online (%s)", s.LastCheck.Format("15:04:05")))
	default:
		return errorStyle.Render(fmt.Sprintf("● API offline: %s (%s)", s.LastError, s.LastCheck.Format("15:04:05")))
	}
}

func (m Model) viewConfirm() string {
	return boxStyle.Render(warningStyle.Render(fmt.Sprintf(
		"A API parece estar offline.\n%s\n\nDeseja tentar gerar o PDF mesmo assim? (y/n)",
		m.confirm.Status.LastError,
	)))
}

func (m Model) viewRecords() string {
	if len(m.records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Downloads"))
	b.WriteString("\n")
	for _, rec := range m.records {
		b.WriteString("  ")
		b.WriteString(m.renderRecord(rec))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRecord(rec model.DownloadRecord) string {
	name := fileStyle.Render(rec.DisplayName())
	switch rec.Status {
	case model.DownloadDownloading:
		return fmt.Sprintf("%s %s %s %3d%%", m.spinner.View(), name, m.progress.ViewAs(float64(rec.Progress)/100), rec.Progress)
	case model.DownloadCompleted:
		return successStyle.Render("✓ ") + name + dimStyle.Render(" "+download.FormatSize(rec.Size))
	case model.DownloadError:
		return errorStyle.Render("✗ ") + name + errorStyle.Render(" "+rec.Error)
	default:
		return dimStyle.Render("… ") + name + dimStyle.Render(" "+rec.Status.Label())
	}
}

func (m Model) viewLastGenerated() string {
	for _, rec := range m.history {
		if rec.Status != model.DownloadCompleted {
			continue
		}
		return infoStyle.Render(fmt.Sprintf("Último PDF gerado: %s (%s) às %s",
			rec.DisplayName(), download.FormatSize(rec.Size), rec.CompletedAt.Format("15:04:05"))) + "\n\n"
	}
	return ""
}

func (m Model) viewHistory() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Histórico"))
	b.WriteString("\n")
	if len(m.history) == 0 {
		b.WriteString(dimStyle.Render("  nenhum download ainda"))
		b.WriteString("\n")
	}
	for _, rec := range m.history {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %-10s %s",
			rec.CompletedAt.Format("15:04:05"), rec.Status.Label(), rec.DisplayName())))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateConfirmOffline:
		return "y: gerar mesmo assim • n: cancelar"
	case StateFolderInput:
		return "enter: salvar • esc: voltar"
	}
	return "i: miolo • c: capa • b: contracapa • u: unificar • a: todos • t: testar API • f: pasta • h: histórico • x: limpar • v: verbose • q: sair"
}

// Run starts the TUI application.
func Run(opts Options) error {
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}

	b := &bridge{}
	m := newModel(opts, b)
	defer m.manager.Tracker().Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	b.attach(p)

	mon := m.manager.Monitor()
	stop := mon.OnChange(func(s model.ConnectivityStatus) { b.send(ConnectivityMsg{Status: s}) })
	defer stop()
	if err := mon.Start(opts.Settings.ProbeSchedule); err != nil {
		slog.Warn("periodic connectivity check disabled", "error", err)
	}
	defer mon.Stop()

	_, err := p.Run()
	return err
}
