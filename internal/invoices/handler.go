package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/foundry-erp/foundry-erp/internal/money"
	"github.com/foundry-erp/foundry-erp/internal/platform/httpx"
)

// Handler exposes invoice registration and lookup over JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
}

type createInvoiceRequest struct {
	Number      string `json:"number"`
	PartyID     int64  `json:"party_id" validate:"required,gt=0"`
	IssuedOn    string `json:"issued_on" validate:"omitempty,datetime=2006-01-02"`
	DueOn       string `json:"due_on" validate:"omitempty,datetime=2006-01-02"`
	TotalPaise  int64  `json:"total_paise" validate:"required,gt=0"`
	Description string `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request failed validation")
		return
	}
	inv, err := h.service.Create(r.Context(), CreateInvoiceInput{
		Number:      req.Number,
		PartyID:     req.PartyID,
		IssuedOn:    parseDate(req.IssuedOn),
		DueOn:       parseDate(req.DueOn),
		Total:       money.Money(req.TotalPaise),
		Description: req.Description,
	})
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	if v := r.URL.Query().Get("party_id"); v != "" {
		filter.PartyID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	filter.OnlyOutstanding = r.URL.Query().Get("outstanding") == "true"
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	if items == nil {
		items = []InvoiceWithBalance{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		httpx.ProblemWith(w, http.StatusBadRequest, "Validation Failed", vErr.Error(),
			map[string]any{"field": vErr.Field})
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}
