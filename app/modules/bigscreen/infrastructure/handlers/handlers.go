package bigscreenhandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
)

// BigScreenHandlers serves display state over plain HTTP.
type BigScreenHandlers struct {
	service bigscreenservice.Service
	logger  *slog.Logger
}

func NewBigScreenHandlers(service bigscreenservice.Service, logger *slog.Logger) *BigScreenHandlers {
	return &BigScreenHandlers{
		service: service,
		logger:  logger,
	}
}

func (h *BigScreenHandlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.service.Board())
}

func (h *BigScreenHandlers) HandleLive(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.service.Live())
}

// HandleRefresh queues an out-of-band board refresh and returns immediately.
func (h *BigScreenHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.service.RequestRefresh()
	h.logger.InfoContext(r.Context(), "Manual board refresh requested", "remote_addr", r.RemoteAddr)
	h.writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HandleHeight sizes the active board page for the posted viewport.
func (h *BigScreenHandlers) HandleHeight(w http.ResponseWriter, r *http.Request) {
	var viewport bigscreendomain.Viewport
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&viewport); err != nil {
		http.Error(w, "invalid viewport", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.service.BoardHeight(viewport))
}

func (h *BigScreenHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	board := h.service.Board()
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":       "ok",
		"sequence":     board.Sequence,
		"generated_at": board.GeneratedAt,
		"live":         board.Live,
	})
}

func (h *BigScreenHandlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write response", "error", err)
	}
}
