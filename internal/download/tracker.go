package download

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

// Tracker defaults.
const (
	DefaultHistoryLimit = 10
	DefaultDismissGrace = 3 * time.Second
)

var (
	// ErrInvalidTransition is returned when a record cannot move to the
	// requested state, e.g. a completed record asked to start again.
	ErrInvalidTransition = errors.New("invalid download transition")

	// ErrUnknownRecord is returned for IDs that are not visible.
	ErrUnknownRecord = errors.New("unknown download")

	errUnchanged = errors.New("unchanged")
)

// Tracker owns the lifecycle of DownloadRecords.
//
// Records move queued → downloading → completed | error (queued → error is
// also allowed). Finished records stay visible until the grace period after
// the last terminal transition passes with nothing downloading; then all
// finished records leave the visible list together. History keeps the most
// recent finished records regardless of visibility.
type Tracker struct {
	mu           sync.Mutex
	nextID       uint64
	visible      []*model.DownloadRecord
	history      []model.DownloadRecord
	historyLimit int
	grace        time.Duration
	timer        *time.Timer
	listeners    map[int]func()
	listenerID   int
	now          func() time.Time
}

// NewTracker creates a Tracker. Non-positive arguments use
// DefaultHistoryLimit and DefaultDismissGrace.
func NewTracker(historyLimit int, grace time.Duration) *Tracker {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if grace <= 0 {
		grace = DefaultDismissGrace
	}
	return &Tracker{
		historyLimit: historyLimit,
		grace:        grace,
		listeners:    make(map[int]func()),
		now:          time.Now,
	}
}

// OnChange registers fn to be called after every change to the visible
// list or history. The returned function removes the listener.
func (t *Tracker) OnChange(fn func()) (unsubscribe func()) {
	t.mu.Lock()
	id := t.listenerID
	t.listenerID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Submit adds a queued record and returns a copy of it.
func (t *Tracker) Submit(filename string, action model.ActionKind) model.DownloadRecord {
	t.mu.Lock()
	t.nextID++
	rec := &model.DownloadRecord{
		ID:        t.nextID,
		Filename:  filename,
		Action:    action,
		Status:    model.DownloadQueued,
		CreatedAt: t.now(),
	}
	t.visible = append(t.visible, rec)
	out := *rec
	t.mu.Unlock()

	t.notify()
	return out
}

// Start moves a queued record to downloading.
func (t *Tracker) Start(id uint64) error {
	return t.transition(id, func(rec *model.DownloadRecord) error {
		if rec.Status != model.DownloadQueued {
			return invalid(rec, model.DownloadDownloading)
		}
		rec.Status = model.DownloadDownloading
		return nil
	})
}

// Progress sets the progress of a downloading record. pct is clamped to
// [0, 100]; values below the current progress are ignored.
func (t *Tracker) Progress(id uint64, pct int) error {
	pct = max(0, min(100, pct))

	return t.transition(id, func(rec *model.DownloadRecord) error {
		if rec.Status != model.DownloadDownloading {
			return invalid(rec, model.DownloadDownloading)
		}
		if pct <= rec.Progress {
			return errUnchanged
		}
		rec.Progress = pct
		return nil
	})
}

// Complete marks a downloading record as completed with the artifact size.
func (t *Tracker) Complete(id uint64, size int64) error {
	return t.finish(id, func(rec *model.DownloadRecord) error {
		if rec.Status != model.DownloadDownloading {
			return invalid(rec, model.DownloadCompleted)
		}
		rec.Status = model.DownloadCompleted
		rec.Progress = 100
		rec.Size = size
		return nil
	})
}

// Fail marks a queued or downloading record as failed.
func (t *Tracker) Fail(id uint64, cause string) error {
	return t.finish(id, func(rec *model.DownloadRecord) error {
		if rec.Status.Terminal() {
			return invalid(rec, model.DownloadError)
		}
		rec.Status = model.DownloadError
		rec.Error = cause
		return nil
	})
}

// Dismiss removes a finished record from the visible list. History is not
// affected.
func (t *Tracker) Dismiss(id uint64) error {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownRecord, id)
	}
	if !t.visible[i].Status.Terminal() {
		t.mu.Unlock()
		return fmt.Errorf("%w: download %d is still %s", ErrInvalidTransition, id, t.visible[i].Status)
	}
	t.visible = append(t.visible[:i], t.visible[i+1:]...)
	t.mu.Unlock()

	t.notify()
	return nil
}

// Get returns the record with id, looking in the visible list first and
// then in history.
func (t *Tracker) Get(id uint64) (model.DownloadRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexOf(id); i >= 0 {
		return *t.visible[i], true
	}
	for _, rec := range t.history {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.DownloadRecord{}, false
}

// Visible returns the visible records in submission order.
func (t *Tracker) Visible() []model.DownloadRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.DownloadRecord, len(t.visible))
	for i, rec := range t.visible {
		out[i] = *rec
	}
	return out
}

// Active returns the visible records that have not finished.
func (t *Tracker) Active() []model.DownloadRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.DownloadRecord
	for _, rec := range t.visible {
		if !rec.Status.Terminal() {
			out = append(out, *rec)
		}
	}
	return out
}

// History returns finished records, most recent first.
func (t *Tracker) History() []model.DownloadRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.DownloadRecord, len(t.history))
	copy(out, t.history)
	return out
}

// Close stops the grace timer.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) transition(id uint64, apply func(*model.DownloadRecord) error) error {
	t.mu.Lock()
	i := t.indexOf(id)
	if i < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownRecord, id)
	}
	if err := apply(t.visible[i]); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	t.mu.Unlock()

	t.notify()
	return nil
}

func (t *Tracker) finish(id uint64, apply func(*model.DownloadRecord) error) error {
	return t.transition(id, func(rec *model.DownloadRecord) error {
		if err := apply(rec); err != nil {
			return err
		}
		rec.CompletedAt = t.now()

		t.history = append([]model.DownloadRecord{*rec}, t.history...)
		if len(t.history) > t.historyLimit {
			t.history = t.history[:t.historyLimit]
		}

		if t.timer != nil {
			t.timer.Stop()
		}
		t.timer = time.AfterFunc(t.grace, t.sweep)
		return nil
	})
}

// sweep removes every finished record from the visible list unless a
// download is still running.
func (t *Tracker) sweep() {
	t.mu.Lock()
	for _, rec := range t.visible {
		if rec.Status == model.DownloadDownloading {
			t.mu.Unlock()
			return
		}
	}

	kept := t.visible[:0]
	for _, rec := range t.visible {
		if !rec.Status.Terminal() {
			kept = append(kept, rec)
		}
	}
	removed := len(kept) != len(t.visible)
	for i := len(kept); i < len(t.visible); i++ {
		t.visible[i] = nil
	}
	t.visible = kept
	t.mu.Unlock()

	if removed {
		t.notify()
	}
}

func (t *Tracker) indexOf(id uint64) int {
	for i, rec := range t.visible {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) notify() {
	t.mu.Lock()
	listeners := make([]func(), 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func invalid(rec *model.DownloadRecord, to model.DownloadStatus) error {
	return fmt.Errorf("%w: download %d is %s, cannot become %s", ErrInvalidTransition, rec.ID, rec.Status, to)
}
