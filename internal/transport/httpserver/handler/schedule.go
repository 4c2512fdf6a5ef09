package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	scheduledomain "tribeboard/internal/domain/schedule"
)

type createEventRequest struct {
	Title    string     `json:"title"`
	Kind     string     `json:"kind"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   time.Time  `json:"ends_at"`
	AllDay   bool       `json:"all_day"`
	Location *string    `json:"location"`
	DriverID *string    `json:"driver_id"`
}

type updateEventRequest struct {
	Title    *string    `json:"title"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	AllDay   *bool      `json:"all_day"`
	Location *string    `json:"location"`
	DriverID *string    `json:"driver_id"`
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	from, err := parseTimeRequired(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "from must be an RFC 3339 timestamp")
		return
	}
	to, err := parseTimeRequired(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "to must be an RFC 3339 timestamp")
		return
	}

	events, err := h.Schedule.ListEvents(r.Context(), member.FamilyID, from, to)
	if err != nil {
		if errors.Is(err, scheduledomain.ErrInvalidWindow) {
			writeError(w, http.StatusBadRequest, "invalid_window", "to must be after from")
			return
		}
		h.log.InternalError("schedule.list failed", err, "family_id", member.FamilyID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]eventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	event, err := h.Schedule.CreateEvent(r.Context(), scheduledomain.CreateEventInput{
		FamilyID:  member.FamilyID,
		Title:     req.Title,
		Kind:      req.Kind,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		AllDay:    req.AllDay,
		Location:  req.Location,
		DriverID:  req.DriverID,
		CreatedBy: user.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduledomain.ErrInvalidKind):
			writeError(w, http.StatusBadRequest, "invalid_kind", "invalid event kind")
		case errors.Is(err, scheduledomain.ErrInvalidWindow):
			writeError(w, http.StatusBadRequest, "invalid_window", "event must end after it starts")
		default:
			h.log.BusinessError("schedule.create failed", err, "family_id", member.FamilyID)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	eventID := chi.URLParam(r, "event_id")
	event, err := h.Schedule.UpdateEvent(r.Context(), scheduledomain.UpdateEventInput{
		ID:       eventID,
		FamilyID: member.FamilyID,
		Title:    req.Title,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		AllDay:   req.AllDay,
		Location: req.Location,
		DriverID: req.DriverID,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduledomain.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
		case errors.Is(err, scheduledomain.ErrInvalidWindow):
			writeError(w, http.StatusBadRequest, "invalid_window", "event must end after it starts")
		default:
			h.log.BusinessError("schedule.update failed", err, "family_id", member.FamilyID, "event_id", eventID)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	eventID := chi.URLParam(r, "event_id")
	if err := h.Schedule.DeleteEvent(r.Context(), member.FamilyID, eventID); err != nil {
		if errors.Is(err, scheduledomain.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "event_not_found", "event not found")
			return
		}
		h.log.InternalError("schedule.delete failed", err, "family_id", member.FamilyID, "event_id", eventID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type eventResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	AllDay    bool      `json:"all_day"`
	Location  *string   `json:"location"`
	DriverID  *string   `json:"driver_id,omitempty"`
	CreatedBy string    `json:"created_by"`
}

func toEventResponse(event scheduledomain.Event) eventResponse {
	return eventResponse{
		ID:        event.ID,
		Title:     event.Title,
		Kind:      event.Kind,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
		AllDay:    event.AllDay,
		Location:  event.Location,
		DriverID:  event.DriverID,
		CreatedBy: event.CreatedBy,
	}
}
