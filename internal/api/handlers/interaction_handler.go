package handlers

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/models"
	"github.com/Adithyan773/kisan-mitra/internal/services"
)

const maxUploadBytes = 32 << 20

type InteractionHandler struct {
	interactions *services.InteractionService
}

func NewInteractionHandler(interactions *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// ProcessInteraction is the one-turn endpoint: multipart form in,
// {query_transcript, ai_response, audio_output_b64} out.
func (h *InteractionHandler) ProcessInteraction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	location := r.FormValue("user_location")
	languageName := r.FormValue("language_name")
	speakRaw := r.FormValue("speak_aloud")
	if location == "" || languageName == "" || speakRaw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "user_location, language_name and speak_aloud are required",
		})
		return
	}
	speakAloud, err := strconv.ParseBool(strings.ToLower(speakRaw))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "speak_aloud must be a boolean"})
		return
	}

	req := &models.InteractionRequest{
		UserID:       r.FormValue("user_id"),
		UserName:     r.FormValue("user_name"),
		UserLocation: location,
		LanguageName: languageName,
		SpeakAloud:   speakAloud,
		TextQuery:    r.FormValue("text_query"),
	}
	req.Audio, _ = formFileBytes(r, "audio_file")
	req.Image, req.ImageMIME = formFileBytes(r, "visual_file")

	resp, err := h.interactions.Process(r.Context(), req)
	if err != nil {
		if err == core.ErrNoInput {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"ai_response": "Please provide a voice message, text query, or an image.",
			})
			return
		}
		// Anything else is internal; log the detail, hide it from the
		// caller.
		slog.Error("interaction failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "An internal server error occurred."})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// formFileBytes reads an optional multipart file fully into memory and
// returns its bytes and declared content type. Uploads are transient:
// nothing here ever touches disk or the database.
func formFileBytes(r *http.Request, field string) ([]byte, string) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, ""
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		slog.Warn("upload read failed", "field", field, "error", err)
		return nil, ""
	}
	return data, contentType(header)
}

func contentType(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return header.Header.Get("Content-Type")
}
