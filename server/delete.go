package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cyp0633/repeatcal/internal/notify"
	"github.com/cyp0633/repeatcal/storage"
)

// DeleteSeriesResponse reports how many occurrences a series delete removed
type DeleteSeriesResponse struct {
	Deleted int `json:"deleted"`
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, &HTTPError{Status: http.StatusNotFound, Message: "Event not found", Err: err})
			return
		}
		s.respondError(w, err)
		return
	}

	s.logger.Info("deleted event", "event_id", id)
	s.publish(r, notify.NewChange(notify.OpDeleted, "", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteSeries succeeds whether or not the series still has members.
func (s *Server) handleDeleteSeries(w http.ResponseWriter, r *http.Request) {
	seriesID := mux.Vars(r)["seriesId"]

	removed, err := s.series.DeleteSeries(r.Context(), seriesID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if removed > 0 {
		change := notify.NewChange(notify.OpSeriesDeleted, seriesID)
		change.Count = removed
		s.publish(r, change)
	}
	s.respondJSON(w, http.StatusOK, DeleteSeriesResponse{Deleted: removed})
}
