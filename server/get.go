package server

import (
	"net/http"

	"github.com/cyp0633/repeatcal/event"
)

// EventsResponse is the body of list and batch responses
type EventsResponse struct {
	Events []event.Event `json:"events"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}

	s.logger.Debug("listed events", "count", len(events))
	s.respondJSON(w, http.StatusOK, EventsResponse{Events: events})
}
