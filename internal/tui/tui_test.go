package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/config"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/download"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/project"
)

func testModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	opts.Settings.APIBaseURL = "http://127.0.0.1:1"
	opts.Settings.DownloadsPath = t.TempDir()
	opts.Settings.ProbeSchedule = ""
	if opts.Project.Filename == "" {
		opts.Project = model.NewProject()
	}

	m := newModel(opts, &bridge{})
	t.Cleanup(func() {
		m.cancel()
		m.manager.Tracker().Close()
	})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmOffline(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want bool
	}{
		{keyRunes("y"), true},
		{keyRunes("s"), true},
		{tea.KeyMsg{Type: tea.KeyEnter}, true},
		{keyRunes("n"), false},
		{tea.KeyMsg{Type: tea.KeyEsc}, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			m := testModel(t, Options{})
			reply := make(chan bool, 1)
			status := model.ConnectivityStatus{LastError: "Status: 503", LastCheck: time.Now()}

			m = update(t, m, ConfirmOfflineMsg{Status: status, Reply: reply})
			if m.state != StateConfirmOffline {
				t.Fatalf("state = %v, want StateConfirmOffline", m.state)
			}
			if !strings.Contains(m.View(), "Status: 503") {
				t.Error("confirmation should show the probe error")
			}

			m = update(t, m, tt.key)
			if m.state != StateReady {
				t.Errorf("state = %v, want StateReady", m.state)
			}
			select {
			case got := <-reply:
				if got != tt.want {
					t.Errorf("reply = %v, want %v", got, tt.want)
				}
			default:
				t.Fatal("no reply sent")
			}
		})
	}
}

func TestConfirmOffline_SecondRequestDeclined(t *testing.T) {
	m := testModel(t, Options{})
	first := make(chan bool, 1)
	second := make(chan bool, 1)

	m = update(t, m, ConfirmOfflineMsg{Reply: first})
	m = update(t, m, ConfirmOfflineMsg{Reply: second})

	select {
	case got := <-second:
		if got {
			t.Error("second request should be declined")
		}
	default:
		t.Fatal("second request got no reply")
	}
	if len(first) != 0 {
		t.Error("first request should still be pending")
	}
}

func TestShutdownDeclinesPendingConfirmation(t *testing.T) {
	m := testModel(t, Options{})
	reply := make(chan bool, 1)
	m = update(t, m, ConfirmOfflineMsg{Reply: reply})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if got := <-reply; got {
		t.Error("pending confirmation should be declined on quit")
	}
	if next.(Model).ctx.Err() == nil {
		t.Error("quitting should cancel running generations")
	}
}

func TestAddLog(t *testing.T) {
	m := testModel(t, Options{})

	m.addLog(download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose})
	if len(m.logs) != 0 {
		t.Errorf("verbose event logged while verbose is off: %v", m.logs)
	}

	m.verbose = true
	for i := 0; i < maxLogs+3; i++ {
		m.addLog(download.ProgressEvent{Message: string(rune('a' + i)), Level: download.LevelInfo})
	}
	if len(m.logs) != maxLogs {
		t.Fatalf("len(logs) = %d, want %d", len(m.logs), maxLogs)
	}
	if m.logs[0].Message != "d" {
		t.Errorf("oldest kept log = %q, want %q", m.logs[0].Message, "d")
	}
}

func TestPatchMsg_SavesProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livro.yaml")
	p := model.NewProject()
	p.Filename = "livro"
	m := testModel(t, Options{Project: p, ProjectPath: path})

	m = update(t, m, PatchMsg{Patch: model.ProjectPatch{
		Status:          model.StatusPtr(model.ProjectCompleted),
		AppendGenerated: []model.GeneratedPDF{{Type: model.ActionCover, Filename: "livro_cover.pdf", Size: 4096}},
	}})

	if m.project.Status != model.ProjectCompleted {
		t.Errorf("status = %q, want %q", m.project.Status, model.ProjectCompleted)
	}
	saved, err := project.Load(path)
	if err != nil {
		t.Fatalf("project not saved: %v", err)
	}
	if len(saved.GeneratedPDFs) != 1 || saved.GeneratedPDFs[0].Filename != "livro_cover.pdf" {
		t.Errorf("saved generated PDFs = %+v", saved.GeneratedPDFs)
	}
}

func TestFolderInput(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	m := testModel(t, Options{SettingsPath: settingsPath})

	m = update(t, m, keyRunes("f"))
	if m.state != StateFolderInput {
		t.Fatalf("state = %v, want StateFolderInput", m.state)
	}
	m = update(t, m, keyRunes("Livros"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if m.opts.Settings.PreferredFolder != "Livros" {
		t.Errorf("PreferredFolder = %q, want %q", m.opts.Settings.PreferredFolder, "Livros")
	}
	loaded, err := config.Load(settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.PreferredFolder != "Livros" {
		t.Errorf("saved PreferredFolder = %q, want %q", loaded.PreferredFolder, "Livros")
	}
}

func TestRenderRecord(t *testing.T) {
	m := testModel(t, Options{})
	base := model.DownloadRecord{Filename: "livro", Action: model.ActionInterior}

	tests := []struct {
		name   string
		status model.DownloadStatus
		extra  func(*model.DownloadRecord)
		want   string
	}{
		{"queued", model.DownloadQueued, nil, model.DownloadQueued.Label()},
		{"downloading", model.DownloadDownloading, func(r *model.DownloadRecord) { r.Progress = 42 }, "42%"},
		{"completed", model.DownloadCompleted, func(r *model.DownloadRecord) { r.Size = 2 * 1024 * 1024 }, "2.00 MB"},
		{"error", model.DownloadError, func(r *model.DownloadRecord) { r.Error = "Serviço indisponível" }, "Serviço indisponível"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base
			rec.Status = tt.status
			if tt.extra != nil {
				tt.extra(&rec)
			}
			got := m.renderRecord(rec)
			if !strings.Contains(got, rec.DisplayName()) {
				t.Errorf("renderRecord() = %q, missing %q", got, rec.DisplayName())
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("renderRecord() = %q, missing %q", got, tt.want)
			}
		})
	}
}

func TestViewConnectivity(t *testing.T) {
	m := testModel(t, Options{})
	now := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status model.ConnectivityStatus
		want   string
	}{
		{"unchecked", model.ConnectivityStatus{}, "não verificada"},
		{"online", model.ConnectivityStatus{Online: true, LastCheck: now}, "online (14:30:00)"},
		{"offline", model.ConnectivityStatus{LastCheck: now, LastError: "Status: 502"}, "offline: Status: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m = update(t, m, ConnectivityMsg{Status: tt.status})
			if got := m.viewConnectivity(); !strings.Contains(got, tt.want) {
				t.Errorf("viewConnectivity() = %q, missing %q", got, tt.want)
			}
		})
	}
}
