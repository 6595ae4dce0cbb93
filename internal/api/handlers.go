package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/projects"
	"github.com/libros-dev/libros/internal/reports"
)

// listProjects handles GET /api/v1/projects.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projs, err := s.projects().List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]Project, 0, len(projs))
	for _, p := range projs {
		out = append(out, toProject(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": out})
}

// createProject handles POST /api/v1/projects.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	proj, err := s.projects().Create(r.Context(), projects.Params{
		Name:        &req.Name,
		Description: &req.Description,
		Type:        &req.Type,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.SeedChart {
		if _, err := s.registry(proj).Seed(r.Context(), accounts.DefaultChart(proj.Type)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"project": toProject(proj)})
}

// getProject handles GET /api/v1/projects/{projectID}.
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"project": toProject(projectFrom(r.Context()))})
}

// dashboard handles GET /api/v1/projects/{projectID}/dashboard.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	txns, accts, ok := s.loadBooks(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDashboard(reports.BuildDashboard(txns, accts)))
}

// journal handles GET /api/v1/projects/{projectID}/journal. Query
// parameters: kind (Sale, Purchase or empty), from and to (YYYY-MM-DD).
func (s *Server) journal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f reports.JournalFilter
	if k := q.Get("kind"); k != "" && k != "all" {
		kind, ok := model.ParseKind(k)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid kind")
			return
		}
		f.Kind = kind
	}
	for _, bound := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(bound.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(model.DateFormat, v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+bound.name+" date")
			return
		}
		*bound.dst = d
	}

	svc, err := s.ledger(r.Context(), projectFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJournal(reports.FilterJournal(svc.Snapshot(), f)))
}

// book handles GET /api/v1/projects/{projectID}/books/{kind}.
func (s *Server) book(w http.ResponseWriter, r *http.Request) {
	kind, ok := model.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		switch chi.URLParam(r, "kind") {
		case "ventas", "sales":
			kind = model.KindSale
		case "compras", "purchases":
			kind = model.KindPurchase
		default:
			writeJSONError(w, http.StatusNotFound, "not_found", "Unknown book")
			return
		}
	}

	svc, err := s.ledger(r.Context(), projectFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b := reports.SalesBook(svc.Snapshot())
	if kind == model.KindPurchase {
		b = reports.PurchaseBook(svc.Snapshot())
	}
	writeJSON(w, http.StatusOK, toBook(b))
}

// listAccounts handles GET /api/v1/projects/{projectID}/accounts. The
// optional type parameter filters by account type.
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	svc, err := s.registry(projectFrom(r.Context())).Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	accts := svc.All()
	if t := r.URL.Query().Get("type"); t != "" {
		typ, ok := model.ParseAccountType(t)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid type")
			return
		}
		accts = svc.ByType(typ)
	}
	out := make([]Account, 0, len(accts))
	for _, a := range accts {
		out = append(out, toAccount(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

// createAccount handles POST /api/v1/projects/{projectID}/accounts.
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	typ, ok := model.ParseAccountType(req.Type)
	if !ok {
		typ = model.AccountType(req.Type)
	}

	acct, err := s.registry(projectFrom(r.Context())).Create(r.Context(), accounts.CreateParams{
		Code:           req.Code,
		Name:           req.Name,
		Type:           typ,
		CashEquivalent: req.CashEquivalent,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": toAccount(acct)})
}

// accountLedger handles GET /api/v1/projects/{projectID}/ledger/{accountID}.
func (s *Server) accountLedger(w http.ResponseWriter, r *http.Request) {
	txns, accts, ok := s.loadBooks(w, r)
	if !ok {
		return
	}
	ref := chi.URLParam(r, "accountID")
	acct, found := accounts.NewService(accts).Lookup(ref)
	if !found {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		return
	}
	l, _ := reports.AccountLedger(txns, accts, acct.ID)
	writeJSON(w, http.StatusOK, toAccountLedger(l))
}

// createTransaction handles POST /api/v1/projects/{projectID}/transactions.
func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTransaction(w, r)
	if !ok {
		return
	}
	proj := projectFrom(r.Context())
	svc, err := s.ledger(r.Context(), proj)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := svc.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.touch(r, proj)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": toTransaction(t)})
}

// updateTransaction handles PUT /api/v1/projects/{projectID}/transactions/{transactionID}.
func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTransaction(w, r)
	if !ok {
		return
	}
	proj := projectFrom(r.Context())
	svc, err := s.ledger(r.Context(), proj)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := svc.Update(r.Context(), chi.URLParam(r, "transactionID"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.touch(r, proj)
	writeJSON(w, http.StatusOK, map[string]any{"transaction": toTransaction(t)})
}

// deleteTransaction handles DELETE /api/v1/projects/{projectID}/transactions/{transactionID}.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	proj := projectFrom(r.Context())
	svc, err := s.ledger(r.Context(), proj)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := svc.Delete(r.Context(), chi.URLParam(r, "transactionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.touch(r, proj)
	w.WriteHeader(http.StatusNoContent)
}

func decodeTransaction(w http.ResponseWriter, r *http.Request) (journal.Candidate, bool) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return journal.Candidate{}, false
	}
	kind, ok := model.ParseKind(req.Kind)
	if !ok {
		kind = model.TransactionKind(req.Kind)
	}
	return journal.Candidate{
		Kind:            kind,
		Date:            req.Date,
		Counterparty:    req.Counterparty,
		InvoiceNumber:   req.InvoiceNumber,
		Description:     req.Description,
		BaseAmount:      req.BaseAmount,
		ExpenseCategory: req.ExpenseCategory,
	}, true
}

// loadBooks reads the project's transactions and its chart merged with the
// global catalog.
func (s *Server) loadBooks(w http.ResponseWriter, r *http.Request) ([]model.Transaction, []model.Account, bool) {
	proj := projectFrom(r.Context())
	svc, err := s.ledger(r.Context(), proj)
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, false
	}
	chart, err := s.registry(proj).LoadChart(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, false
	}
	return svc.Snapshot(), chart.All(), true
}

// touch bumps the project's LastModified after a write. A failure is logged
// and does not fail the request.
func (s *Server) touch(r *http.Request, proj model.Project) {
	if err := s.projects().Touch(r.Context(), proj.ID); err != nil {
		s.logger.Warn("touching project", "project", proj.ID, "error", err)
	}
}
