package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	familydomain "tribeboard/internal/domain/family"
	messagingdomain "tribeboard/internal/domain/messaging"
)

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	limit, err := parseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
		return
	}
	before, err := parseTimeParam(r.URL.Query().Get("before"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "before must be an RFC 3339 timestamp")
		return
	}

	messages, err := h.Messaging.ListMessages(r.Context(), member.FamilyID, messagingdomain.ListFilter{
		Limit:  limit,
		Before: before,
	})
	if err != nil {
		h.log.InternalError("messages.list failed", err, "family_id", member.FamilyID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]messageResponse, 0, len(messages))
	for _, message := range messages {
		response = append(response, toMessageResponse(message))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	message, err := h.Messaging.PostMessage(r.Context(), member.FamilyID, user.ID, req.Body)
	if err != nil {
		if errors.Is(err, messagingdomain.ErrBodyTooLong) {
			writeError(w, http.StatusBadRequest, "body_too_long", "message body too long")
			return
		}
		h.log.BusinessError("messages.post failed", err, "family_id", member.FamilyID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(*message))
}

func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	messageID := chi.URLParam(r, "message_id")
	actorIsAdmin := member.Role == familydomain.RoleParentAdmin

	if err := h.Messaging.DeleteMessage(r.Context(), member.FamilyID, messageID, user.ID, actorIsAdmin); err != nil {
		switch {
		case errors.Is(err, messagingdomain.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "message_not_found", "message not found")
		case errors.Is(err, messagingdomain.ErrNotAuthor):
			writeError(w, http.StatusForbidden, "not_author", "only the author or the admin can delete a message")
		default:
			h.log.InternalError("messages.delete failed", err, "family_id", member.FamilyID, "message_id", messageID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type messageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageResponse(message messagingdomain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID,
		AuthorID:  message.AuthorID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}
