package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/foundry-erp/foundry-erp/internal/money"
	"github.com/foundry-erp/foundry-erp/internal/platform/httpx"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

const idempotencyHeader = "Idempotency-Key"
const idempotencyModule = "ledger"

// BatchReader lists the payments created by one allocation call.
type BatchReader interface {
	ListPaymentsByBatch(ctx context.Context, batchID string) ([]Payment, error)
}

// Handler exposes the ledger engine over JSON.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	batches     BatchReader
	idempotency *shared.IdempotencyStore
	validator   *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, batches BatchReader, idempotency *shared.IdempotencyStore) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		batches:     batches,
		idempotency: idempotency,
		validator:   validator.New(),
	}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices/{id}/balance", h.invoiceBalance)
	r.Post("/invoices/{id}/write-off", h.writeOff)
	r.Post("/payments", h.recordPayment)
	r.Post("/payments/{id}/void", h.voidPayment)
	r.Post("/allocations", h.allocate)
	r.Get("/allocations/{batchID}", h.allocationBatch)
}

type recordPaymentRequest struct {
	InvoiceID   int64  `json:"invoice_id" validate:"required,gt=0"`
	AmountPaise int64  `json:"amount_paise" validate:"required,gt=0"`
	PaidOn      string `json:"paid_on" validate:"omitempty,datetime=2006-01-02"`
	Method      string `json:"method" validate:"required"`
	Reference   string `json:"reference"`
	Remarks     string `json:"remarks"`
}

type allocateRequest struct {
	PartyID     int64  `json:"party_id" validate:"required,gt=0"`
	AmountPaise int64  `json:"amount_paise" validate:"required,gt=0"`
	PaidOn      string `json:"paid_on" validate:"omitempty,datetime=2006-01-02"`
	Method      string `json:"method" validate:"required"`
	Reference   string `json:"reference"`
	Remarks     string `json:"remarks"`
}

type writeOffRequest struct {
	Remarks string `json:"remarks" validate:"required"`
}

type paymentResponse struct {
	ID            int64      `json:"id"`
	InvoiceID     int64      `json:"invoice_id"`
	PartyID       int64      `json:"party_id"`
	AmountPaise   int64      `json:"amount_paise"`
	AmountDisplay string     `json:"amount_display"`
	PaidOn        string     `json:"paid_on"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	Reference     string     `json:"reference,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	BatchID       string     `json:"batch_id,omitempty"`
	VoidedAt      *time.Time `json:"voided_at,omitempty"`
}

type balanceResponse struct {
	InvoiceID          int64  `json:"invoice_id"`
	InvoiceNumber      string `json:"invoice_number"`
	TotalPaise         int64  `json:"total_paise"`
	TotalPaidPaise     int64  `json:"total_paid_paise"`
	OutstandingPaise   int64  `json:"outstanding_paise"`
	OutstandingDisplay string `json:"outstanding_display"`
	IsOverpaid         bool   `json:"is_overpaid"`
	Status             string `json:"status"`
}

func (h *Handler) invoiceBalance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, bal, status, err := h.service.InvoiceBalance(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "invoice balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, balanceResponse{
		InvoiceID:          inv.ID,
		InvoiceNumber:      inv.Number,
		TotalPaise:         inv.Total.Paise(),
		TotalPaidPaise:     bal.TotalPaid.Paise(),
		OutstandingPaise:   bal.Outstanding.Paise(),
		OutstandingDisplay: bal.Outstanding.Format(),
		IsOverpaid:         bal.IsOverpaid,
		Status:             string(status),
	})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	release, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	payment, err := h.service.RecordPayment(r.Context(), RecordPaymentInput{
		InvoiceID: req.InvoiceID,
		Amount:    money.Money(req.AmountPaise),
		PaidOn:    parseDate(req.PaidOn),
		Method:    req.Method,
		Reference: req.Reference,
		Remarks:   req.Remarks,
	})
	if err != nil {
		release()
		h.respondError(w, r, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if !h.decode(w, r, &req) {
		return
	}
	release, ok := h.claimIdempotency(w, r)
	if !ok {
		return
	}
	result, err := h.service.AllocatePayment(r.Context(), AllocateInput{
		PartyID:   req.PartyID,
		Amount:    money.Money(req.AmountPaise),
		PaidOn:    parseDate(req.PaidOn),
		Method:    req.Method,
		Reference: req.Reference,
		Remarks:   req.Remarks,
	})
	if err != nil {
		release()
		h.respondError(w, r, "allocate payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) allocationBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	payments, err := h.batches.ListPaymentsByBatch(r.Context(), batchID)
	if err != nil {
		h.respondError(w, r, "list allocation batch", err)
		return
	}
	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) writeOff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	var req writeOffRequest
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := h.service.WriteOff(r.Context(), WriteOffInput{InvoiceID: id, Remarks: req.Remarks})
	if err != nil {
		h.respondError(w, r, "write off", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (h *Handler) voidPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payment id")
		return
	}
	payment, err := h.service.VoidPayment(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "void payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

// decode parses and validates the request body, responding on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			httpx.ProblemWith(w, http.StatusBadRequest, "Validation Failed",
				"request failed validation",
				map[string]any{"field": fieldErrs[0].Field(), "rule": fieldErrs[0].Tag()})
			return false
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request failed validation")
		return false
	}
	return true
}

// claimIdempotency reserves the request's Idempotency-Key, when supplied. The
// returned release func undoes the claim so a failed operation can be retried
// with the same key.
func (h *Handler) claimIdempotency(w http.ResponseWriter, r *http.Request) (func(), bool) {
	key := r.Header.Get(idempotencyHeader)
	if key == "" || h.idempotency == nil {
		return func() {}, true
	}
	if err := h.idempotency.CheckAndInsert(r.Context(), key, idempotencyModule); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "request with this idempotency key was already processed")
			return nil, false
		}
		h.logger.Error("idempotency check", slog.Any("error", err))
		httpx.RespondError(w, err)
		return nil, false
	}
	return func() {
		if err := h.idempotency.Delete(r.Context(), key); err != nil {
			h.logger.Warn("idempotency rollback", slog.String("key", key), slog.Any("error", err))
		}
	}, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var validationErr *ValidationError
	var exceedsErr *ExceedsOutstandingError
	var writeOffErr *NothingToWriteOffError
	switch {
	case errors.As(err, &validationErr):
		httpx.ProblemWith(w, http.StatusBadRequest, "Validation Failed", validationErr.Error(),
			map[string]any{"field": validationErr.Field})
	case errors.As(err, &exceedsErr):
		httpx.ProblemWith(w, http.StatusUnprocessableEntity, "Exceeds Outstanding", exceedsErr.Error(),
			map[string]any{
				"invoice_id":          exceedsErr.InvoiceID,
				"outstanding_paise":   exceedsErr.Outstanding.Paise(),
				"outstanding_display": exceedsErr.Outstanding.Format(),
				"attempted_paise":     exceedsErr.Attempted.Paise(),
			})
	case errors.As(err, &writeOffErr):
		httpx.ProblemWith(w, http.StatusConflict, "Nothing To Write Off", writeOffErr.Error(),
			map[string]any{"invoice_id": writeOffErr.InvoiceID})
	case errors.Is(err, ErrConcurrencyConflict):
		httpx.ProblemWith(w, http.StatusConflict, "Concurrency Conflict", err.Error(),
			map[string]any{"retryable": true})
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPaymentNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.RespondError(w, err)
	}
}

func toPaymentResponse(p Payment) paymentResponse {
	resp := paymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		PartyID:       p.PartyID,
		AmountPaise:   p.Amount.Paise(),
		AmountDisplay: p.Amount.Format(),
		PaidOn:        p.PaidOn.Format("2006-01-02"),
		Method:        p.Method,
		Status:        string(p.Status),
		Reference:     p.Reference,
		Remarks:       p.Remarks,
		VoidedAt:      p.VoidedAt,
	}
	if p.BatchID != nil {
		resp.BatchID = p.BatchID.String()
	}
	return resp
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}
