package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
)

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

type testServer struct {
	t      *testing.T
	store  *store.Memory
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemory()
	srv := NewServer(st, "owner-1", journal.DefaultRules(), nil)
	srv.SetClock(func() time.Time { return testNow })
	return &testServer{t: t, store: st, router: srv.Router()}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// createProject creates a business project with the default chart.
func (ts *testServer) createProject() Project {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/v1/projects", CreateProjectRequest{Name: "Tienda", Type: "empresa", SeedChart: true})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct{ Project Project }](ts.t, rec).Project
}

func purchaseRequest(invoice, amount string) TransactionRequest {
	return TransactionRequest{
		Kind:            "Purchase",
		Date:            "2024-05-02",
		Counterparty:    "Proveedor SA",
		InvoiceNumber:   invoice,
		BaseAmount:      amount,
		ExpenseCategory: "Merchandise",
	}
}

func saleRequest(invoice, amount string) TransactionRequest {
	return TransactionRequest{
		Kind:          "Sale",
		Date:          "2024-05-01",
		Counterparty:  "Cliente Uno",
		InvoiceNumber: invoice,
		BaseAmount:    amount,
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjects(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	assert.Equal(t, "Tienda", proj.Name)
	assert.Equal(t, "activo", proj.Status)

	rec := ts.do(http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct{ Projects []Project }](t, rec)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, proj.ID, list.Projects[0].ID)

	rec = ts.do(http.MethodGet, "/api/v1/projects/"+proj.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/projects/missing/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProjectValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/projects", CreateProjectRequest{Name: "  "})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Contains(t, resp.Fields, "name")

	rec = ts.do(http.MethodPost, "/api/v1/projects", CreateProjectRequest{Name: "X", Type: "casino"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "type")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString("{"))
	out := httptest.NewRecorder()
	ts.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	base := "/api/v1/projects/" + proj.ID

	rec := ts.do(http.MethodGet, base+"/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct{ Accounts []Account }](t, rec).Accounts, 10)

	rec = ts.do(http.MethodGet, base+"/accounts?type=Asset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct{ Accounts []Account }](t, rec).Accounts, 4)

	rec = ts.do(http.MethodPost, base+"/accounts", CreateAccountRequest{Code: "1105", Name: "Caja Chica", Type: "Asset"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	acct := decode[struct{ Account Account }](t, rec).Account
	assert.True(t, acct.CashEquivalent)

	rec = ts.do(http.MethodPost, base+"/accounts", CreateAccountRequest{Code: "1105", Name: "Otra", Type: "Asset"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "code")

	rec = ts.do(http.MethodGet, base+"/accounts?type=Nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTransaction(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	base := "/api/v1/projects/" + proj.ID

	rec := ts.do(http.MethodPost, base+"/transactions", saleRequest("001-001", "100"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	txn := decode[struct{ Transaction Transaction }](t, rec).Transaction
	assert.Equal(t, "100.00", txn.BaseAmount)
	assert.Equal(t, "13.00", txn.TaxAmount)
	assert.Equal(t, "113.00", txn.TotalAmount)

	got, err := ts.store.GetProject(context.Background(), proj.ID)
	require.NoError(t, err)
	assert.Equal(t, testNow, got.LastModified)
}

func TestCreateTransactionValidation(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	base := "/api/v1/projects/" + proj.ID

	bad := purchaseRequest("AB", "-5")
	bad.Date = "2030-01-01"
	rec := ts.do(http.MethodPost, base+"/transactions", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, "cannot be in the future", resp.Fields["date"])
	assert.Contains(t, resp.Fields, "invoiceNumber")
	assert.Equal(t, "must be greater than 0", resp.Fields["baseAmount"])

	txns, err := ts.store.ListTransactions(context.Background(), proj.ID, "")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestDuplicatePurchaseInvoice(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	base := "/api/v1/projects/" + proj.ID

	rec := ts.do(http.MethodPost, base+"/transactions", purchaseRequest("F-100", "50"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "letters are rejected")

	rec = ts.do(http.MethodPost, base+"/transactions", purchaseRequest("100-1", "50"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, base+"/transactions", purchaseRequest("100-1", "60"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invoice 100-1 is already registered", decode[ErrorResponse](t, rec).Fields["invoiceNumber"])
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	base := "/api/v1/projects/" + proj.ID

	rec := ts.do(http.MethodPost, base+"/transactions", purchaseRequest("200-1", "50"))
	require.Equal(t, http.StatusCreated, rec.Code)
	purchase := decode[struct{ Transaction Transaction }](t, rec).Transaction

	rec = ts.do(http.MethodPut, base+"/transactions/"+purchase.ID, purchaseRequest("200-1", "80"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[struct{ Transaction Transaction }](t, rec).Transaction
	assert.Equal(t, purchase.ID, updated.ID)
	assert.Equal(t, "90.40", updated.TotalAmount)

	rec = ts.do(http.MethodPost, base+"/transactions", saleRequest("300-1", "10"))
	require.Equal(t, http.StatusCreated, rec.Code)
	sale := decode[struct{ Transaction Transaction }](t, rec).Transaction

	rec = ts.do(http.MethodPut, base+"/transactions/"+sale.ID, saleRequest("300-1", "20"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = ts.do(http.MethodDelete, base+"/transactions/"+sale.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodDelete, base+"/transactions/"+purchase.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodDelete, base+"/transactions/"+purchase.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports(t *testing.T) {
	ts := newTestServer(t)
	proj := ts.createProject()
	base := "/api/v1/projects/" + proj.ID

	for _, req := range []TransactionRequest{
		saleRequest("001-001", "1000"),
		purchaseRequest("500-1", "400"),
	} {
		rec := ts.do(http.MethodPost, base+"/transactions", req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := ts.do(http.MethodGet, base+"/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[Dashboard](t, rec)
	assert.Equal(t, "1130.00", dash.TotalSales)
	assert.Equal(t, "452.00", dash.TotalPurchases)
	assert.Equal(t, "678.00", dash.NetResult)
	assert.Equal(t, "130.00", dash.VATGenerated)
	assert.Equal(t, "52.00", dash.VATPaid)
	assert.Equal(t, 2, dash.TransactionCount)
	assert.Equal(t, 10, dash.AccountCount)

	rec = ts.do(http.MethodGet, base+"/journal?kind=Sale", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	j := decode[Journal](t, rec)
	assert.Equal(t, 1, j.Count)
	assert.Equal(t, "1130.00", j.TotalSales)

	rec = ts.do(http.MethodGet, base+"/journal?from=2024-05-02&to=2024-05-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[Journal](t, rec).Count)

	rec = ts.do(http.MethodGet, base+"/journal?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, base+"/books/compras", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[Book](t, rec)
	assert.Equal(t, "Purchase", b.Kind)
	assert.Equal(t, "52.00", b.Tax)

	rec = ts.do(http.MethodGet, base+"/books/diario", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, base+"/ledger/1101", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	l := decode[AccountLedger](t, rec)
	assert.Equal(t, "1101", l.Account.Code)
	require.Len(t, l.Movements, 2)
	assert.Equal(t, "1130.00", l.TotalDebit)
	assert.Equal(t, "452.00", l.TotalCredit)
	assert.Equal(t, "678.00", l.Balance)

	rec = ts.do(http.MethodGet, base+"/ledger/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportsUseGlobalCatalog(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/v1/projects", CreateProjectRequest{Name: "Sin Cuentas"})
	require.Equal(t, http.StatusCreated, rec.Code)
	proj := decode[struct{ Project Project }](t, rec).Project
	base := "/api/v1/projects/" + proj.ID

	catalog := accounts.NewRegistry(ts.store, "", nil)
	_, err := catalog.Create(context.Background(), accounts.CreateParams{Code: "1101", Name: "Caja General", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	_, err = catalog.Create(context.Background(), accounts.CreateParams{Code: "4101", Name: "Ventas", Type: model.AccountTypeIncome})
	require.NoError(t, err)

	rec = ts.do(http.MethodPost, base+"/transactions", saleRequest("001-001", "100"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, base+"/ledger/1101", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	l := decode[AccountLedger](t, rec)
	require.Len(t, l.Movements, 1)
	assert.Equal(t, "113.00", l.Balance)
	assert.Equal(t, "Deudor", l.Nature)

	rec = ts.do(http.MethodGet, base+"/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[Dashboard](t, rec).AccountCount)

	rec = ts.do(http.MethodGet, base+"/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[struct{ Accounts []Account }](t, rec).Accounts, "account listing stays project-scoped")
}
