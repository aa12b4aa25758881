package handlers

import (
	"net/http"
	"strconv"

	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/services"
)

const defaultHistoryLimit = 20

type HistoryHandler struct {
	store core.Store
}

func NewHistoryHandler(store core.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// GetChatHistory returns the caller's recent messages, oldest first.
// Requires a valid bearer token; the session is derived from the token's
// user id, so one user cannot read another's history.
func (h *HistoryHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	messages, err := h.store.GetChatHistory(r.Context(), services.SessionID(userID), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "An internal server error occurred."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
