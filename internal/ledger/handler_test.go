package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(m *memoryLedger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, newTestService(m), m, nil)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerInvoiceBalance(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 100000)
	router := newTestRouter(m)

	rec := doJSON(t, router, http.MethodGet, "/invoices/1/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(100000), resp.OutstandingPaise)
	require.Equal(t, "UNPAID", resp.Status)
	require.NotEmpty(t, resp.OutstandingDisplay)
}

func TestHandlerInvoiceBalanceNotFound(t *testing.T) {
	router := newTestRouter(newMemoryLedger())
	rec := doJSON(t, router, http.MethodGet, "/invoices/42/balance", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRecordPayment(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 100000)
	router := newTestRouter(m)

	rec := doJSON(t, router, http.MethodPost, "/payments", map[string]any{
		"invoice_id":   1,
		"amount_paise": 40000,
		"method":       "neft",
		"paid_on":      "2026-02-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp paymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(40000), resp.AmountPaise)
	require.Equal(t, "2026-02-01", resp.PaidOn)
	require.Equal(t, "ACTIVE", resp.Status)
}

func TestHandlerRecordPaymentValidation(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 100000)
	router := newTestRouter(m)

	rec := doJSON(t, router, http.MethodPost, "/payments", map[string]any{
		"invoice_id":   1,
		"amount_paise": -5,
		"method":       "neft",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestHandlerRecordPaymentExceedsOutstanding(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 100000)
	router := newTestRouter(m)

	rec := doJSON(t, router, http.MethodPost, "/payments", map[string]any{
		"invoice_id":   1,
		"amount_paise": 120000,
		"method":       "neft",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var problem struct {
		Title            string `json:"title"`
		OutstandingPaise int64  `json:"outstanding_paise"`
		AttemptedPaise   int64  `json:"attempted_paise"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Exceeds Outstanding", problem.Title)
	require.Equal(t, int64(100000), problem.OutstandingPaise)
	require.Equal(t, int64(120000), problem.AttemptedPaise)
}

func TestHandlerAllocateAndFetchBatch(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 50000)
	m.addInvoice(2, 10, "2026-01-05", 30000)
	router := newTestRouter(m)

	rec := doJSON(t, router, http.MethodPost, "/allocations", map[string]any{
		"party_id":     10,
		"amount_paise": 70000,
		"method":       "neft",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var res AllocationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Lines, 2)
	require.Equal(t, int64(0), res.Remaining.Paise())

	rec = doJSON(t, router, http.MethodGet, "/allocations/"+res.BatchID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch []paymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch, 2)
	for _, p := range batch {
		require.Equal(t, res.BatchID.String(), p.BatchID)
	}
}

func TestHandlerWriteOffConflict(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 50000)
	router := newTestRouter(m)

	_, err := m.InsertPayment(context.Background(), Payment{
		InvoiceID: 1, PartyID: 10, Amount: 50000, Status: RecordActive, Method: "neft",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/invoices/1/write-off", map[string]any{
		"remarks": "already settled",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerVoidPayment(t *testing.T) {
	m := newMemoryLedger()
	m.addInvoice(1, 10, "2026-01-01", 50000)
	router := newTestRouter(m)

	p, err := m.InsertPayment(context.Background(), Payment{
		InvoiceID: 1, PartyID: 10, Amount: 20000, Status: RecordActive, Method: "neft",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/payments/1/void", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp paymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, p.ID, resp.ID)
	require.Equal(t, "VOIDED", resp.Status)

	rec = doJSON(t, router, http.MethodPost, "/payments/1/void", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
