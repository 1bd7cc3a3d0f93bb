package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/internal/notify"
)

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var incoming event.Event
	if err := decodeJSON(r, &incoming); err != nil {
		s.respondError(w, err)
		return
	}

	// identifiers are assigned by the store
	form := incoming.Form
	if err := form.Validate(); err != nil {
		s.respondError(w, err)
		return
	}

	created, err := s.store.CreateEvents(r.Context(), []event.Form{form})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("created event", "event_id", created[0].ID)
	s.publish(r, notify.NewChange(notify.OpCreated, created[0].SeriesID(), created[0].ID))
	s.respondJSON(w, http.StatusCreated, created[0])
}

// CreateEventsRequest is the body of a batch create
type CreateEventsRequest struct {
	Events []event.Event `json:"events"`
}

func (s *Server) handleCreateEvents(w http.ResponseWriter, r *http.Request) {
	var req CreateEventsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if len(req.Events) == 0 {
		s.respondError(w, &HTTPError{Status: http.StatusBadRequest, Message: "No events to create"})
		return
	}

	forms, seriesID, err := batchForms(req.Events)
	if err == nil {
		err = s.checkBounds(forms)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	created, err := s.store.CreateEvents(r.Context(), forms)
	if err != nil {
		s.respondError(w, err)
		return
	}

	ids := make([]string, len(created))
	for i, ev := range created {
		ids[i] = ev.ID
	}
	s.logger.Info("created events", "series_id", seriesID, "count", len(created))
	s.publish(r, notify.NewChange(notify.OpCreated, seriesID, ids...))
	s.respondJSON(w, http.StatusCreated, EventsResponse{Events: created})
}

// batchForms validates a batch and gives its recurring members one shared
// series identifier, generating it when none of them carries one.
func batchForms(events []event.Event) ([]event.Form, string, error) {
	seriesID := ""
	for _, ev := range events {
		id := ev.SeriesID()
		if !ev.Repeat.IsRecurring() || id == "" {
			continue
		}
		if seriesID != "" && id != seriesID {
			return nil, "", &HTTPError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Batch mixes series %q and %q", seriesID, id),
			}
		}
		seriesID = id
	}

	forms := make([]event.Form, len(events))
	for i, ev := range events {
		form := ev.Form
		if form.Repeat.IsRecurring() {
			if seriesID == "" {
				seriesID = uuid.NewString()
			}
			form.Repeat = form.Repeat.WithSeries(seriesID)
		}
		if err := form.Validate(); err != nil {
			return nil, "", fmt.Errorf("event %d: %w", i, err)
		}
		forms[i] = form
	}
	return forms, seriesID, nil
}

// checkBounds rejects batches the recurrence engine could never have
// produced: more members than one series may hold, or dates past the horizon.
func (s *Server) checkBounds(forms []event.Form) error {
	policy := s.engine.Config()
	if len(forms) > policy.MaxOccurrences {
		return &HTTPError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Batch of %d events exceeds the limit of %d", len(forms), policy.MaxOccurrences),
		}
	}
	for _, form := range forms {
		if form.Repeat.IsRecurring() && form.Date.After(policy.Horizon) {
			return &HTTPError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Occurrence on %s is past the horizon %s", form.Date, policy.Horizon),
			}
		}
	}
	return nil
}

// publish reports a committed change. Delivery failures are logged by the
// publisher and never fail the request.
func (s *Server) publish(r *http.Request, change notify.Change) {
	if err := s.publisher.Publish(r.Context(), change); err != nil {
		s.logger.Warn("change not published", "op", change.Op, "error", err)
	}
}
