// Package client is the event operations façade used by calendar front ends.
// It validates and expands forms locally, persists them through the event
// API and keeps a copy of the authoritative event list.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/internal/httpclient"
	"github.com/cyp0633/repeatcal/recurrence"
)

const (
	eventsPath          = "/api/events"
	eventsListPath      = "/api/events-list"
	recurringEventsPath = "/api/recurring-events"
)

var (
	// ErrOccurrenceGone is returned when an edit or delete targets an
	// occurrence the store no longer has, e.g. after a concurrent series delete
	ErrOccurrenceGone = errors.New("occurrence no longer exists")
	// ErrNoOccurrences is returned when a recurring form expands to no dates
	ErrNoOccurrences = errors.New("recurrence produces no occurrences")
)

// Config holds the dependencies of Operations
type Config struct {
	HTTP     httpclient.HttpClientWrapper
	Engine   *recurrence.Engine // optional, defaults to recurrence.NewEngine()
	Notifier Notifier           // optional
	Logger   *slog.Logger       // optional
	OnSave   func()             // optional, called after a successful save
}

// Operations performs event mutations. Local state changes only after the
// server has confirmed a mutation and the event list has been fetched again.
type Operations struct {
	http        httpclient.HttpClientWrapper
	engine      *recurrence.Engine
	notifier    Notifier
	logger      *slog.Logger
	onSave      func()
	newSeriesID func() string

	mu     sync.RWMutex
	events []event.Event
}

func New(config Config) (*Operations, error) {
	if config.HTTP == nil {
		return nil, errors.New("http client is required")
	}
	if config.Engine == nil {
		config.Engine = recurrence.NewEngine()
	}
	if config.Notifier == nil {
		config.Notifier = NotifierFunc(func(Notice) {})
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.OnSave == nil {
		config.OnSave = func() {}
	}
	return &Operations{
		http:        config.HTTP,
		engine:      config.Engine,
		notifier:    config.Notifier,
		logger:      config.Logger,
		onSave:      config.OnSave,
		newSeriesID: uuid.NewString,
	}, nil
}

// Events returns a copy of the last fetched event list.
func (o *Operations) Events() []event.Event {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.events)
}

type eventsResponse struct {
	Events []event.Event `json:"events"`
}

// FetchAll replaces the local event list with the server's. On failure the
// local list is kept.
func (o *Operations) FetchAll(ctx context.Context) error {
	var resp eventsResponse
	if err := o.http.DoGET(ctx, eventsPath, &resp); err != nil {
		o.logger.Error("failed to fetch events", "error", err)
		o.notifier.Notify(Notice{Level: LevelError, Message: MsgLoadFailed})
		return fmt.Errorf("fetch events: %w", err)
	}

	o.mu.Lock()
	o.events = resp.Events
	o.mu.Unlock()

	o.logger.Debug("fetched events", "count", len(resp.Events))
	return nil
}

// Init performs the first fetch and announces it.
func (o *Operations) Init(ctx context.Context) error {
	if err := o.FetchAll(ctx); err != nil {
		return err
	}
	o.notifier.Notify(Notice{Level: LevelInfo, Message: MsgLoaded})
	return nil
}

// refresh runs after a confirmed mutation. A failed refetch is reported but
// does not turn the mutation into a failure.
func (o *Operations) refresh(ctx context.Context) {
	_ = o.FetchAll(ctx)
}

func eventPath(id string) string {
	return eventsPath + "/" + url.PathEscape(id)
}

func seriesPath(seriesID string) string {
	return recurringEventsPath + "/" + url.PathEscape(seriesID)
}
