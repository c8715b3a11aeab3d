package connectivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/model"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 10 * time.Second

// Pinger performs a single liveness request. *http.Client implements it.
type Pinger interface {
	Ping(ctx context.Context, url string) (int, error)
}

// Monitor tracks whether the rendering service is reachable.
type Monitor struct {
	pinger  Pinger
	url     string
	timeout time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	status    model.ConnectivityStatus
	listeners map[int]func(model.ConnectivityStatus)
	nextID    int

	group singleflight.Group

	cronMu sync.Mutex
	cron   *cron.Cron
}

// NewMonitor creates a Monitor that probes healthURL. A zero timeout uses
// DefaultTimeout.
func NewMonitor(p Pinger, healthURL string, timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		pinger:    p,
		url:       healthURL,
		timeout:   timeout,
		now:       time.Now,
		listeners: make(map[int]func(model.ConnectivityStatus)),
	}
}

// Status returns the last known status.
func (m *Monitor) Status() model.ConnectivityStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// OnChange registers fn to be called after every status change. The
// returned function removes the listener.
func (m *Monitor) OnChange(fn func(model.ConnectivityStatus)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Probe checks the service once and returns the resulting status. It never
// fails: problems are reported through Online and LastError.
//
// Concurrent calls share one request. If ctx ends first, the last known
// status is returned while the shared probe completes in the background.
func (m *Monitor) Probe(ctx context.Context) model.ConnectivityStatus {
	ch := m.group.DoChan("probe", func() (any, error) {
		return m.probe(context.WithoutCancel(ctx)), nil
	})

	select {
	case res := <-ch:
		return res.Val.(model.ConnectivityStatus)
	case <-ctx.Done():
		return m.Status()
	}
}

func (m *Monitor) probe(ctx context.Context) model.ConnectivityStatus {
	m.update(func(s *model.ConnectivityStatus) { s.Checking = true })

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	code, err := m.pinger.Ping(ctx, m.url)

	var lastErr string
	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		lastErr = fmt.Sprintf("timed out after %s", m.timeout)
	case err != nil:
		lastErr = err.Error()
	case code < 200 || code >= 300:
		lastErr = fmt.Sprintf("Status: %d", code)
	}

	status := m.update(func(s *model.ConnectivityStatus) {
		s.Online = lastErr == ""
		s.LastError = lastErr
		s.LastCheck = m.now()
		s.Checking = false
	})

	if status.Online {
		slog.Debug("service reachable", "url", m.url)
	} else {
		slog.Warn("service unreachable", "url", m.url, "error", lastErr)
	}
	return status
}

func (m *Monitor) update(fn func(*model.ConnectivityStatus)) model.ConnectivityStatus {
	m.mu.Lock()
	fn(&m.status)
	status := m.status
	listeners := make([]func(model.ConnectivityStatus), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(status)
	}
	return status
}

// Start probes immediately and then on schedule, a cron spec such as
// "@every 5m". An empty schedule only runs the immediate probe.
func (m *Monitor) Start(schedule string) error {
	m.cronMu.Lock()
	defer m.cronMu.Unlock()

	if m.cron != nil {
		return errors.New("connectivity monitor already started")
	}

	if schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(schedule, func() { m.Probe(context.Background()) }); err != nil {
			return fmt.Errorf("failed to schedule probe: %w", err)
		}
		c.Start()
		m.cron = c
		slog.Debug("connectivity probe scheduled", "schedule", schedule)
	}

	go m.Probe(context.Background())
	return nil
}

// Stop cancels the periodic probe and waits for a running one to finish.
func (m *Monitor) Stop() {
	m.cronMu.Lock()
	c := m.cron
	m.cron = nil
	m.cronMu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
