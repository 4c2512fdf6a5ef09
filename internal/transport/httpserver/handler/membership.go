package handler

import (
	"errors"
	"net/http"

	familydomain "tribeboard/internal/domain/family"
	"tribeboard/internal/transport/httpserver/middleware"
)

// requireMembership resolves the calling user's family membership, writing
// the error response itself when the caller is unauthenticated or not in a
// family.
func (h *Handlers) requireMembership(w http.ResponseWriter, r *http.Request) (middleware.User, *familydomain.Member, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return middleware.User{}, nil, false
	}

	member, err := h.Families.GetMembership(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, familydomain.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "family_not_found", "join or create a family first")
			return middleware.User{}, nil, false
		}
		h.log.InternalError("membership lookup failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return middleware.User{}, nil, false
	}

	return user, member, true
}
