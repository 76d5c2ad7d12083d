// Package dialog exposes the conversation engine over HTTP.
package dialog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/model/transcript"
	dialogService "github.com/orthovaidhya/vaidhya/backend/internal/service/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/store"
)

const storageErrorText = "Sorry, I couldn't record that message. Please try again."

// Handler drives the chat endpoints: one conversational turn per request.
type Handler struct {
	engine      *dialogService.Engine
	sessions    *dialogService.Registry
	transcripts *store.Transcript
	log         *zap.Logger
}

// New creates the chat handler. The transcript store may be nil, in which
// case turns are not persisted.
func New(engine *dialogService.Engine, sessions *dialogService.Registry, transcripts *store.Transcript, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		engine:      engine,
		sessions:    sessions,
		transcripts: transcripts,
		log:         logger,
	}
}

// RegisterRoutes wires the chat endpoints onto the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/reset", h.handleReset)
	r.Get("/sessions/{sessionID}/transcript", h.handleTranscript)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Value     string `json:"value"` // button payload, wins over message
}

type chatResponse struct {
	SessionID string         `json:"session_id"`
	Replies   []dialog.Reply `json:"replies"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	input := payload.Value
	if input == "" {
		input = payload.Message
	}

	if err := h.record(r, sessionID, transcript.SenderUser, input); err != nil {
		h.log.Error("record user turn", zap.String("session", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, storageErrorText)
		return
	}

	var replies []dialog.Reply
	h.sessions.With(sessionID, func(s *dialog.Session) {
		replies = h.engine.Handle(r.Context(), s, input)
	})

	for _, reply := range replies {
		if err := h.record(r, sessionID, transcript.SenderBot, reply.Text); err != nil {
			h.log.Error("record bot turn", zap.String("session", sessionID), zap.Error(err))
			respondError(w, http.StatusInternalServerError, storageErrorText)
			return
		}
	}

	respondJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Replies: replies})
}

func (h *Handler) record(r *http.Request, sessionID, sender, message string) error {
	if h.transcripts == nil || message == "" {
		return nil
	}
	return h.transcripts.Append(r.Context(), sessionID, sender, message)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	existed := h.sessions.Reset(payload.SessionID)
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "reset",
		"existed": existed,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if h.transcripts == nil {
		respondError(w, http.StatusServiceUnavailable, "transcript store unavailable")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	entries, err := h.transcripts.BySession(r.Context(), sessionID)
	if err != nil {
		h.log.Error("load transcript", zap.String("session", sessionID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"entries":    entries,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
