package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"magis-site/internal/policy"
	"magis-site/internal/services"
	"magis-site/models"
)

// APIHandler serves the public JSON read endpoints and the heartbeat
// fallback endpoint.
type APIHandler struct {
	svc        Services
	heartbeats *services.HeartbeatLog
	backendKey string
	loc        *time.Location
	now        func() time.Time
}

func NewAPIHandler(svc Services, heartbeats *services.HeartbeatLog, backendKey string, loc *time.Location) *APIHandler {
	return &APIHandler{svc: svc, heartbeats: heartbeats, backendKey: backendKey, loc: loc, now: time.Now}
}

type eventsResponse struct {
	Featured *policy.PublicEvent  `json:"featured"`
	Others   []policy.PublicEvent `json:"others"`
}

func (h *APIHandler) Events(e *core.RequestEvent) error {
	events, err := h.svc.Events.GetPublic(e.Request.Context())
	if err != nil {
		slog.Error("Failed to list public events", "error", err)
		return e.Error(http.StatusServiceUnavailable, "Eventos indisponíveis no momento.", nil)
	}

	view := policy.SplitFeatured(events)
	return e.JSON(http.StatusOK, eventsResponse{Featured: view.Featured, Others: view.Others})
}

func (h *APIHandler) Statistics(e *core.RequestEvent) error {
	set, err := h.svc.Statistics.GetSet(e.Request.Context())
	if err != nil {
		slog.Error("Failed to load statistics", "error", err)
		return e.Error(http.StatusServiceUnavailable, "Estatísticas indisponíveis no momento.", nil)
	}
	return e.JSON(http.StatusOK, set.Counters(h.now(), h.loc))
}

func (h *APIHandler) Posts(e *core.RequestEvent) error {
	limit, _ := strconv.Atoi(e.Request.URL.Query().Get("limit"))
	if limit < 0 || limit > 50 {
		limit = 0
	}

	posts, err := h.svc.Posts.GetPublic(e.Request.Context(), limit)
	if err != nil {
		slog.Error("Failed to list posts", "error", err)
		return e.Error(http.StatusServiceUnavailable, "Publicações indisponíveis no momento.", nil)
	}
	return e.JSON(http.StatusOK, posts)
}

// Heartbeat handles the fallback keep-warm write. Only callers holding
// BACKEND_KEY may use it.
func (h *APIHandler) Heartbeat(e *core.RequestEvent) error {
	key := e.Request.Header.Get(services.BackendKeyHeader)
	if h.backendKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.backendKey)) != 1 {
		return e.UnauthorizedError("", nil)
	}

	var payload services.HeartbeatPayload
	if err := e.BindBody(&payload); err != nil {
		return e.BadRequestError("", err)
	}

	if err := h.heartbeats.Record(e.Request.Context(), payload); err != nil {
		var fe *models.FieldError
		if errors.As(err, &fe) {
			return e.BadRequestError("", fe.Fields)
		}
		slog.Error("Failed to record heartbeat", "error", err)
		return e.InternalServerError("", err)
	}
	return e.NoContent(http.StatusNoContent)
}
