package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyp0633/repeatcal/internal/notify"
	"github.com/cyp0633/repeatcal/recurrence"
	"github.com/cyp0633/repeatcal/series"
	"github.com/cyp0633/repeatcal/storage"
)

const (
	headerContentType = "Content-Type"

	mimeTypeJSON     = "application/json"
	mimeTypeCalendar = "text/calendar; charset=utf-8"

	defaultProductID = "-//repeatcal//repeatcal//EN"
)

// Config holds the dependencies of a Server
type Config struct {
	Storage   storage.Storage
	Engine    *recurrence.Engine // optional, bounds batch creates
	Publisher notify.Publisher   // optional, changes are dropped when nil
	Logger    *slog.Logger       // optional
	ProductID string             // PRODID of exported calendars
}

// Server serves the event API
type Server struct {
	store     storage.Storage
	series    *series.Coordinator
	engine    *recurrence.Engine
	publisher notify.Publisher
	logger    *slog.Logger
	productID string
	router    *mux.Router
}

// New creates a Server with its routes registered.
func New(config Config) (*Server, error) {
	if config.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Engine == nil {
		config.Engine = recurrence.NewEngine()
	}
	if config.Publisher == nil {
		config.Publisher = notify.Discard
	}
	if config.ProductID == "" {
		config.ProductID = defaultProductID
	}

	s := &Server{
		store:     config.Storage,
		series:    series.NewCoordinator(config.Storage, config.Logger),
		engine:    config.Engine,
		publisher: config.Publisher,
		logger:    config.Logger,
		productID: config.ProductID,
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", s.handleListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events.ics", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleCreateEvent).Methods(http.MethodPost)
	api.HandleFunc("/events-list", s.handleCreateEvents).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", s.handleUpdateEvent).Methods(http.MethodPut)
	api.HandleFunc("/events/{id}", s.handleDeleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/recurring-events/{seriesId}", s.handleUpdateSeries).Methods(http.MethodPut)
	api.HandleFunc("/recurring-events/{seriesId}", s.handleDeleteSeries).Methods(http.MethodDelete)

	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	return r
}
