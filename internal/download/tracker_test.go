package download

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

func newTestTracker() *Tracker {
	tr := NewTracker(0, time.Hour)
	return tr
}

func TestTracker_Lifecycle(t *testing.T) {
	tr := newTestTracker()
	defer tr.Close()

	rec := tr.Submit("bichos", model.ActionInterior)
	if rec.Status != model.DownloadQueued || rec.ID == 0 {
		t.Fatalf("Submit() = %+v, want a queued record with an ID", rec)
	}

	if err := tr.Start(rec.ID); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if err := tr.Progress(rec.ID, 40); err != nil {
		t.Fatalf("Progress() unexpected error: %v", err)
	}
	if err := tr.Complete(rec.ID, 2048); err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}

	got, ok := tr.Get(rec.ID)
	if !ok {
		t.Fatal("Get() found nothing")
	}
	if got.Status != model.DownloadCompleted || got.Progress != 100 || got.Size != 2048 {
		t.Errorf("record = %+v, want completed at 100%% with size 2048", got)
	}
	if got.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}
}

func TestTracker_IDsIncrease(t *testing.T) {
	tr := newTestTracker()
	a := tr.Submit("a", model.ActionCover)
	b := tr.Submit("b", model.ActionCover)
	if b.ID <= a.ID {
		t.Errorf("IDs %d then %d, want increasing", a.ID, b.ID)
	}
}

func TestTracker_ProgressIsMonotonic(t *testing.T) {
	tr := newTestTracker()
	rec := tr.Submit("x", model.ActionInterior)
	tr.Start(rec.ID)

	steps := []struct {
		pct  int
		want int
	}{
		{10, 10},
		{50, 50},
		{30, 50},
		{-5, 50},
		{90, 90},
		{150, 100},
	}
	for _, s := range steps {
		if err := tr.Progress(rec.ID, s.pct); err != nil {
			t.Fatalf("Progress(%d) unexpected error: %v", s.pct, err)
		}
		got, _ := tr.Get(rec.ID)
		if got.Progress != s.want {
			t.Errorf("after Progress(%d) = %d, want %d", s.pct, got.Progress, s.want)
		}
	}
}

func TestTracker_InvalidTransitions(t *testing.T) {
	tr := newTestTracker()
	defer tr.Close()

	queued := tr.Submit("q", model.ActionInterior)
	done := tr.Submit("d", model.ActionInterior)
	tr.Start(done.ID)
	tr.Complete(done.ID, 1)
	failed := tr.Submit("f", model.ActionInterior)
	tr.Fail(failed.ID, "boom")

	tests := []struct {
		name string
		op   func() error
	}{
		{"progress on queued", func() error { return tr.Progress(queued.ID, 10) }},
		{"complete on queued", func() error { return tr.Complete(queued.ID, 1) }},
		{"restart completed", func() error { return tr.Start(done.ID) }},
		{"progress on completed", func() error { return tr.Progress(done.ID, 100) }},
		{"fail completed", func() error { return tr.Fail(done.ID, "late") }},
		{"complete failed", func() error { return tr.Complete(failed.ID, 1) }},
		{"restart failed", func() error { return tr.Start(failed.ID) }},
		{"dismiss queued", func() error { return tr.Dismiss(queued.ID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("error = %v, want ErrInvalidTransition", err)
			}
		})
	}

	if err := tr.Start(9999); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("Start(unknown) = %v, want ErrUnknownRecord", err)
	}
}

func TestTracker_FailFromQueued(t *testing.T) {
	tr := newTestTracker()
	defer tr.Close()

	rec := tr.Submit("x", model.ActionCover)
	if err := tr.Fail(rec.ID, "HTTP 500"); err != nil {
		t.Fatalf("Fail() unexpected error: %v", err)
	}
	got, _ := tr.Get(rec.ID)
	if got.Status != model.DownloadError || got.Error != "HTTP 500" {
		t.Errorf("record = %+v, want error with cause", got)
	}
}

func TestTracker_HistoryCap(t *testing.T) {
	tr := NewTracker(10, time.Hour)
	defer tr.Close()

	ids := make([]uint64, 12)
	for i := range ids {
		rec := tr.Submit(fmt.Sprintf("livro-%d", i), model.ActionInterior)
		tr.Start(rec.ID)
		ids[i] = rec.ID
	}
	// livro-0 was submitted first but finishes last
	for i := 1; i < len(ids); i++ {
		tr.Complete(ids[i], int64(i))
	}
	tr.Fail(ids[0], "timeout")

	h := tr.History()
	if len(h) != 10 {
		t.Fatalf("len(History()) = %d, want 10", len(h))
	}
	if h[0].Filename != "livro-0" {
		t.Errorf("most recent = %q, want livro-0", h[0].Filename)
	}
	if h[1].Filename != "livro-11" {
		t.Errorf("second = %q, want livro-11", h[1].Filename)
	}
	if h[9].Filename != "livro-3" {
		t.Errorf("oldest kept = %q, want livro-3", h[9].Filename)
	}
}

func TestTracker_SweepWaitsForActiveDownloads(t *testing.T) {
	tr := newTestTracker()
	defer tr.Close()

	done := tr.Submit("done", model.ActionCover)
	tr.Start(done.ID)
	tr.Complete(done.ID, 1)

	running := tr.Submit("running", model.ActionInterior)
	tr.Start(running.ID)

	tr.sweep()
	if got := len(tr.Visible()); got != 2 {
		t.Fatalf("visible after sweep with active download = %d, want 2", got)
	}

	tr.Fail(running.ID, "timeout")
	queued := tr.Submit("queued", model.ActionBackcover)

	tr.sweep()
	vis := tr.Visible()
	if len(vis) != 1 || vis[0].ID != queued.ID {
		t.Fatalf("visible after sweep = %+v, want only the queued record", vis)
	}
	if len(tr.History()) != 2 {
		t.Errorf("history should keep swept records, got %d", len(tr.History()))
	}
	if _, ok := tr.Get(done.ID); !ok {
		t.Error("Get() should still find swept records in history")
	}
}

func TestTracker_GraceTimerClearsFinished(t *testing.T) {
	tr := NewTracker(0, 20*time.Millisecond)
	defer tr.Close()

	changed := make(chan struct{}, 16)
	tr.OnChange(func() { changed <- struct{}{} })

	rec := tr.Submit("x", model.ActionCover)
	tr.Start(rec.ID)
	tr.Complete(rec.ID, 1)

	deadline := time.After(2 * time.Second)
	for len(tr.Visible()) != 0 {
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("finished record was not cleared after the grace period")
		}
	}
}

func TestTracker_Dismiss(t *testing.T) {
	tr := newTestTracker()
	defer tr.Close()

	rec := tr.Submit("x", model.ActionUnify)
	tr.Start(rec.ID)
	tr.Fail(rec.ID, "boom")

	if err := tr.Dismiss(rec.ID); err != nil {
		t.Fatalf("Dismiss() unexpected error: %v", err)
	}
	if len(tr.Visible()) != 0 {
		t.Error("record still visible after Dismiss")
	}
	if len(tr.History()) != 1 {
		t.Error("Dismiss should not touch history")
	}
	if err := tr.Dismiss(rec.ID); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("second Dismiss() = %v, want ErrUnknownRecord", err)
	}
}

func TestTracker_OnChange(t *testing.T) {
	tr := newTestTracker()
	defer tr.Close()

	calls := 0
	unsubscribe := tr.OnChange(func() { calls++ })

	rec := tr.Submit("x", model.ActionCover)
	tr.Start(rec.ID)
	tr.Progress(rec.ID, 10)
	tr.Progress(rec.ID, 5)
	if calls != 3 {
		t.Errorf("listener called %d times, want 3", calls)
	}

	unsubscribe()
	tr.Progress(rec.ID, 20)
	if calls != 3 {
		t.Error("listener called after unsubscribe")
	}
}
