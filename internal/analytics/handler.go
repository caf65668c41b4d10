package analytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foundry-erp/foundry-erp/internal/platform/httpx"
)

// Handler exposes the reporting reads over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/pending", h.pending)
	r.Get("/aging", h.aging)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.GetDashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.PendingByParty(r.Context())
	if err != nil {
		h.logger.Error("pending by party", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if pending == nil {
		pending = []PartyPending{}
	}
	httpx.JSON(w, http.StatusOK, pending)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if v := r.URL.Query().Get("as_of"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	buckets, err := h.service.Aging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("aging", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if buckets == nil {
		buckets = []AgingBucket{}
	}
	httpx.JSON(w, http.StatusOK, buckets)
}
