package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/internal/notify"
	"github.com/cyp0633/repeatcal/series"
	"github.com/cyp0633/repeatcal/storage"
)

// handleUpdateEvent edits exactly one occurrence. The occurrence keeps its
// identifier and series unless the edit detaches it.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var incoming event.Event
	if err := decodeJSON(r, &incoming); err != nil {
		s.respondError(w, err)
		return
	}

	existing, err := s.store.GetEvent(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, &HTTPError{Status: http.StatusNotFound, Message: "Event not found", Err: err})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	revised := series.ReviseOccurrence(*existing, incoming)
	if err := revised.Validate(); err != nil {
		s.respondError(w, err)
		return
	}

	updated, err := s.store.UpdateEvent(r.Context(), revised)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if existing.SeriesID() != "" && updated.SeriesID() == "" {
		s.logger.Info("detached occurrence from series", "event_id", id, "series_id", existing.SeriesID())
	} else {
		s.logger.Info("updated event", "event_id", id)
	}
	s.publish(r, notify.NewChange(notify.OpUpdated, existing.SeriesID(), id))
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUpdateSeries(w http.ResponseWriter, r *http.Request) {
	seriesID := mux.Vars(r)["seriesId"]

	patch, err := series.DecodePatch(r.Body)
	if err != nil {
		s.respondError(w, &HTTPError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err})
		return
	}

	updated, err := s.series.UpdateSeries(r.Context(), seriesID, patch)
	if errors.Is(err, series.ErrSeriesNotFound) {
		s.respondError(w, &HTTPError{Status: http.StatusNotFound, Message: "Series not found", Err: err})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	ids := make([]string, len(updated))
	for i, ev := range updated {
		ids[i] = ev.ID
	}
	s.publish(r, notify.NewChange(notify.OpSeriesUpdated, seriesID, ids...))
	s.respondJSON(w, http.StatusOK, EventsResponse{Events: updated})
}
