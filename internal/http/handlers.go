package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ledger/internal/cache"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleQueryTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		s.engine.DeleteTransaction(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	raw, err := parseTransactionPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := s.engine.AddTransaction(r.Context(), raw)
	if errors.Is(err, core.ErrInvalidTransactionType) {
		writeError(w, http.StatusUnprocessableEntity, "type must be income or expense")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create transaction failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(stored))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	raw, err := parseTransactionPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := s.engine.UpdateTransaction(r.Context(), id, raw)
	switch {
	case errors.Is(err, core.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	case errors.Is(err, core.ErrInvalidTransactionType):
		writeError(w, http.StatusUnprocessableEntity, "type must be income or expense")
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Update transaction failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(stored))
}

func (s *Server) handleQueryTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.Key(s.engine.Generation(),
		"tx", filter.Category, filter.Notes, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if cached, ok := s.queryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dtos := toTransactionDTOs(s.engine.QueryTransactions(filter))
	s.queryCache.Set(key, dtos)
	writeJSON(w, http.StatusOK, dtos)
}
