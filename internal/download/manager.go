package download

import (
	"context"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/artifact"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/config"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/connectivity"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/failure"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/http"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/request"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// EventKind identifies what a ProgressEvent reports.
type EventKind string

const (
	EventProgress            EventKind = "progress"
	EventValidationRejected  EventKind = "validation-rejected"
	EventOfflineWarning      EventKind = "offline-warning"
	EventGenerationFailed    EventKind = "generation-failed"
	EventGenerationSucceeded EventKind = "generation-succeeded"
)

// ProgressEvent represents a generation progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Kind    EventKind

	Action   model.ActionKind
	RecordID uint64 // 0 before a record exists
	Progress int
}

// OverrideFunc decides whether to generate although the service looks
// offline. It may block, e.g. to ask the user.
type OverrideFunc func(status model.ConnectivityStatus) bool

// ProjectUpdateFunc receives the patches proposed during a generation. It
// may be called from several goroutines when GenerateAll is used.
type ProjectUpdateFunc func(patch model.ProjectPatch)

// Result describes a successful generation.
type Result struct {
	Record    model.DownloadRecord
	Filename  string
	Size      int64
	Location  string
	RequestID string
	Attempts  []http.Attempt

	// Patch is the final change proposed for the project.
	Patch model.ProjectPatch
}

// Outcome is the result of one action of GenerateAll.
type Outcome struct {
	Action model.ActionKind
	Result *Result
	Err    error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClient sets the transport client.
func WithClient(c *http.Client) Option {
	return func(m *Manager) { m.client = c }
}

// WithMonitor sets the connectivity monitor.
func WithMonitor(mon *connectivity.Monitor) Option {
	return func(m *Manager) { m.monitor = mon }
}

// WithSaver sets where artifacts are saved.
func WithSaver(s artifact.Saver) Option {
	return func(m *Manager) { m.saver = s }
}

// WithTracker sets the download tracker.
func WithTracker(t *Tracker) Option {
	return func(m *Manager) { m.tracker = t }
}

// WithOverride sets the offline override decision.
func WithOverride(fn OverrideFunc) Option {
	return func(m *Manager) { m.override = fn }
}

// WithProjectUpdate sets the receiver of project patches.
func WithProjectUpdate(fn ProjectUpdateFunc) Option {
	return func(m *Manager) { m.onProjectUpdate = fn }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager coordinates PDF generations.
type Manager struct {
	settings  *config.Settings
	client    *http.Client
	monitor   *connectivity.Monitor
	builder   *request.Builder
	validator *artifact.Validator
	tracker   *Tracker

	saverMu sync.RWMutex
	saver   artifact.Saver

	override        OverrideFunc
	onProjectUpdate ProjectUpdateFunc
	onProgress      func(ProgressEvent)
	logger          *slog.Logger

	now          func() time.Time
	newRequestID func() string
}

// NewManager creates a new generation Manager. Collaborators not set
// through options are built from settings.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:     settings,
		builder:      request.NewBuilder(settings.ToBuilderDefaults()),
		validator:    settings.ToValidator(),
		onProgress:   onProgress,
		now:          time.Now,
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.client == nil {
		m.client = http.NewClient(settings.UserAgent)
	}
	if m.monitor == nil {
		m.monitor = connectivity.NewMonitor(m.client, settings.HealthURL(), config.Seconds(settings.ProbeTimeout))
	}
	if m.saver == nil {
		m.saver = settings.ToSaver("")
	}
	if m.tracker == nil {
		m.tracker = NewTracker(settings.HistoryLimit, config.Seconds(settings.DismissGrace))
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Tracker returns the download tracker.
func (m *Manager) Tracker() *Tracker {
	return m.tracker
}

// SetSaver replaces where subsequent generations save their artifacts.
func (m *Manager) SetSaver(s artifact.Saver) {
	m.saverMu.Lock()
	m.saver = s
	m.saverMu.Unlock()
}

func (m *Manager) currentSaver() artifact.Saver {
	m.saverMu.RLock()
	defer m.saverMu.RUnlock()
	return m.saver
}

// Monitor returns the connectivity monitor.
func (m *Manager) Monitor() *connectivity.Monitor {
	return m.monitor
}

// Generate produces the artifact for action from project.
//
// Steps:
//  1. Check preconditions; no record is created and nothing is sent on failure
//  2. Probe the service; when offline, ask the OverrideFunc
//  3. Build and encode the request
//  4. Submit a download record and mark the project as generating
//  5. Send with retries, validate the response and save the artifact
//
// Every failure after step 4 leaves the record in the error state, proposes
// status=error for the project and emits a generation-failed event.
func (m *Manager) Generate(ctx context.Context, project model.ProjectState, action model.ActionKind) (*Result, error) {
	return m.generate(ctx, project, action, false)
}

// generate runs one generation. With probed set, the connectivity decision
// has already been made by the caller.
func (m *Manager) generate(ctx context.Context, project model.ProjectState, action model.ActionKind, probed bool) (res *Result, err error) {
	log := m.logger.With("action", string(action))

	if err := request.CheckPreconditions(project, action); err != nil {
		log.Debug("generation rejected", "error", err)
		m.progress(ProgressEvent{Message: failure.UserMessage(err), Level: LevelWarning, Kind: EventValidationRejected, Action: action})
		return nil, err
	}

	if !probed {
		if err := m.checkConnectivity(ctx, action); err != nil {
			return nil, err
		}
	}

	req, err := m.builder.Build(project, action)
	if err != nil {
		m.progress(ProgressEvent{Message: failure.UserMessage(err), Level: LevelWarning, Kind: EventValidationRejected, Action: action})
		return nil, err
	}
	payload, err := req.Encode()
	if err != nil {
		return nil, failure.Validation("encode", "falha ao montar a requisição: %v", err)
	}

	rec := m.tracker.Submit(req.Filename, action)
	requestID := m.newRequestID()
	log = log.With("record", rec.ID, "request_id", requestID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", "panic", r)
			res, err = nil, fmt.Errorf("generate %s: unexpected failure: %v", action, r)
		}
		if err != nil {
			m.fail(log, rec.ID, action, err)
		}
	}()

	if err := m.tracker.Start(rec.ID); err != nil {
		return nil, err
	}
	m.updateProject(model.ProjectPatch{Status: model.StatusPtr(model.ProjectGenerating)})
	m.progress(ProgressEvent{
		Message:  fmt.Sprintf("Gerando %s de %s...", action.Label(), req.Filename),
		Level:    LevelInfo,
		Kind:     EventProgress,
		Action:   action,
		RecordID: rec.ID,
	})

	opts := m.settings.ToSendOptions()
	opts.Header = nethttp.Header{}
	opts.Header.Set("X-Request-ID", requestID)
	opts.OnAttempt = func(a http.Attempt) {
		log.Debug("attempt finished", "attempt", a.Number, "outcome", a.Outcome.String(), "status", a.StatusCode, "duration", a.Duration)
		if a.Outcome != http.OutcomeSuccess {
			m.progress(ProgressEvent{
				Message:  fmt.Sprintf("Tentativa %d/%d falhou: %v", a.Number, opts.MaxAttempts, a.Err),
				Level:    LevelVerbose,
				Kind:     EventProgress,
				Action:   action,
				RecordID: rec.ID,
			})
		}
	}
	opts.OnProgress = m.progressReporter(rec.ID, action)

	resp, err := m.client.Send(ctx, m.settings.GenerateURL(), payload, opts)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", action, err)
	}
	log.Debug("response received", "attempts", len(resp.Attempts), "bytes", len(resp.Body), "content_type", resp.ContentType)

	art, err := m.validator.Validate(resp, req.Filename, action, m.now())
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", action, err)
	}
	m.setProgress(rec.ID, action, 95)

	saver := m.currentSaver()
	if !saver.Save(art, art.Filename) {
		return nil, failure.Delivery("save", fmt.Sprintf("não foi possível salvar %s", art.Filename))
	}

	if err := m.tracker.Complete(rec.ID, art.Size); err != nil {
		return nil, err
	}
	final, _ := m.tracker.Get(rec.ID)

	patch := model.ProjectPatch{
		Status: model.StatusPtr(model.ProjectCompleted),
		AppendGenerated: []model.GeneratedPDF{{
			Type:        action,
			Filename:    art.Filename,
			GeneratedAt: final.CompletedAt,
			Downloaded:  true,
			Size:        art.Size,
		}},
	}
	m.updateProject(patch)

	location := locationOf(saver)
	log.Info("generation completed", "file", art.Filename, "bytes", art.Size, "location", location)
	m.progress(ProgressEvent{
		Message:  fmt.Sprintf("PDF %s gerado com sucesso! (%s) em %s", art.Filename, FormatSize(art.Size), location),
		Level:    LevelSuccess,
		Kind:     EventGenerationSucceeded,
		Action:   action,
		RecordID: rec.ID,
		Progress: 100,
	})

	return &Result{
		Record:    final,
		Filename:  art.Filename,
		Size:      art.Size,
		Location:  location,
		RequestID: requestID,
		Attempts:  resp.Attempts,
		Patch:     patch,
	}, nil
}

// GenerateAll runs several actions. Unify runs last, after the other
// actions have finished, against the project updated with their artifacts;
// the other actions run concurrently. With no actions, all four run.
//
// The service is probed once for the whole batch, so the OverrideFunc is
// asked at most once. Declining fails every action.
func (m *Manager) GenerateAll(ctx context.Context, project model.ProjectState, actions ...model.ActionKind) []Outcome {
	if len(actions) == 0 {
		actions = model.Actions
	}

	outcomes := make([]Outcome, len(actions))
	if err := m.checkConnectivity(ctx, ""); err != nil {
		for i, action := range actions {
			outcomes[i] = Outcome{Action: action, Err: err}
		}
		return outcomes
	}

	unifyAt := -1

	var g errgroup.Group
	for i, action := range actions {
		outcomes[i].Action = action
		if action == model.ActionUnify {
			unifyAt = i
			continue
		}
		g.Go(func() error {
			outcomes[i].Result, outcomes[i].Err = m.generate(ctx, project, action, true)
			return nil
		})
	}
	g.Wait()

	if unifyAt >= 0 {
		for _, o := range outcomes {
			if o.Result != nil {
				project = project.Apply(o.Result.Patch)
			}
		}
		outcomes[unifyAt].Result, outcomes[unifyAt].Err = m.generate(ctx, project, model.ActionUnify, true)
	}
	return outcomes
}

func (m *Manager) checkConnectivity(ctx context.Context, action model.ActionKind) error {
	status := m.monitor.Probe(ctx)
	if status.Online {
		return nil
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("API parece estar offline (%s)", status.LastError),
		Level:   LevelWarning,
		Kind:    EventOfflineWarning,
		Action:  action,
	})
	if m.override == nil || m.override(status) {
		m.logger.Warn("generating while offline", "action", string(action), "error", status.LastError)
		return nil
	}
	return &failure.Error{Kind: failure.KindNetwork, Op: "probe", Message: status.LastError, Err: failure.ErrOfflineDeclined}
}

// progressReporter maps body read progress to 0-90%.
func (m *Manager) progressReporter(id uint64, action model.ActionKind) func(read, total int64) {
	return func(read, total int64) {
		if total <= 0 {
			return
		}
		m.setProgress(id, action, int(read*90/total))
	}
}

func (m *Manager) setProgress(id uint64, action model.ActionKind, pct int) {
	before, _ := m.tracker.Get(id)
	if err := m.tracker.Progress(id, pct); err != nil {
		return
	}
	after, _ := m.tracker.Get(id)
	if after.Progress == before.Progress {
		return
	}
	m.progress(ProgressEvent{
		Message:  fmt.Sprintf("%s: %d%%", action.Label(), after.Progress),
		Level:    LevelVerbose,
		Kind:     EventProgress,
		Action:   action,
		RecordID: id,
		Progress: after.Progress,
	})
}

func (m *Manager) fail(log *slog.Logger, id uint64, action model.ActionKind, err error) {
	explanation := failure.Explain(err)
	if ferr := m.tracker.Fail(id, explanation.Short()); ferr != nil {
		log.Debug("record already terminal", "error", ferr)
	}
	m.updateProject(model.ProjectPatch{Status: model.StatusPtr(model.ProjectError)})

	log.Error("generation failed", "kind", failure.KindOf(err).String(), "error", err)
	m.progress(ProgressEvent{
		Message:  explanation.String(),
		Level:    LevelError,
		Kind:     EventGenerationFailed,
		Action:   action,
		RecordID: id,
	})
}

func locationOf(s artifact.Saver) string {
	if l, ok := s.(interface{ Location() string }); ok {
		return l.Location()
	}
	return ""
}

func (m *Manager) updateProject(patch model.ProjectPatch) {
	if m.onProjectUpdate != nil && !patch.Empty() {
		m.onProjectUpdate(patch)
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// FormatSize renders a byte count in MB with two decimals.
func FormatSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}
