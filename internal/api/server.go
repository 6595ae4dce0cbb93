package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/projects"
	"github.com/libros-dev/libros/internal/store"
)

type contextKey string

const contextKeyProject contextKey = "project"

// Server holds the dependencies shared by the handlers.
type Server struct {
	store   store.Store
	ownerID string
	rules   journal.Rules
	logger  *slog.Logger
	now     func() time.Time
}

// NewServer creates a Server acting for ownerID.
func NewServer(st store.Store, ownerID string, rules journal.Rules, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: st, ownerID: ownerID, rules: rules, logger: logger, now: time.Now}
}

// SetClock replaces the clock used for timestamps and date checks.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/projects", s.listProjects)
		r.Post("/projects", s.createProject)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Use(s.projectContext)

			r.Get("/", s.getProject)
			r.Get("/dashboard", s.dashboard)
			r.Get("/journal", s.journal)
			r.Get("/books/{kind}", s.book)
			r.Get("/accounts", s.listAccounts)
			r.Post("/accounts", s.createAccount)
			r.Get("/ledger/{accountID}", s.accountLedger)
			r.Post("/transactions", s.createTransaction)
			r.Put("/transactions/{transactionID}", s.updateTransaction)
			r.Delete("/transactions/{transactionID}", s.deleteTransaction)
		})
	})

	return r
}

func (s *Server) projects() *projects.Service {
	svc := projects.NewService(s.store, s.ownerID, s.logger)
	svc.SetClock(s.now)
	return svc
}

// projectContext loads the owner's project named in the URL.
func (s *Server) projectContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proj, err := s.projects().Get(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyProject, proj)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func projectFrom(ctx context.Context) model.Project {
	p, _ := ctx.Value(contextKeyProject).(model.Project)
	return p
}

// ledger returns the project's transaction ledger loaded from the store.
func (s *Server) ledger(ctx context.Context, proj model.Project) (*journal.Service, error) {
	svc := journal.NewService(s.store, proj.ID, s.ownerID, s.rules, s.logger)
	svc.SetClock(s.now)
	if err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Server) registry(proj model.Project) *accounts.Registry {
	return accounts.NewRegistry(s.store, proj.ID, s.logger)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// fieldErrors maps the sentinel errors of the registries to form fields.
var fieldErrors = []struct {
	err   error
	field string
}{
	{accounts.ErrCodeRequired, "code"},
	{accounts.ErrDuplicateCode, "code"},
	{accounts.ErrNameRequired, "name"},
	{accounts.ErrInvalidType, "type"},
	{accounts.ErrTypeImmutable, "type"},
	{projects.ErrNameRequired, "name"},
	{projects.ErrNameTooLong, "name"},
	{projects.ErrDescriptionTooLong, "description"},
	{projects.ErrInvalidType, "type"},
	{projects.ErrInvalidStatus, "status"},
}

// writeError maps an error to a status: validation failures are 422 with
// the field map, missing records 404, store failures 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs journal.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:            "validation_failed",
			ErrorDescription: verrs.Error(),
			Fields:           verrs,
		})
		return
	}
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:            "validation_failed",
				ErrorDescription: err.Error(),
				Fields:           map[string]string{fe.field: err.Error()},
			})
			return
		}
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, journal.ErrSaleNotEditable):
		writeJSONError(w, http.StatusConflict, "not_editable", err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "The books could not be read or written")
	}
}
