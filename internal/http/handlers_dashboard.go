package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/cache"
	"ledger/internal/core"
)

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleBudgetOverview(w, r)
	case http.MethodPut, http.MethodPost:
		s.handleSetBudget(w, r)
	default:
		methodNotAllowed(w, "GET, PUT, POST")
	}
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	overview := s.engine.BudgetOverview()
	dtos := make([]budgetDTO, len(overview))
	for i, c := range overview {
		dtos[i] = toBudgetDTO(c)
	}

	resp := struct {
		Budgets    []budgetDTO `json:"budgets"`
		Unbudgeted []string    `json:"unbudgeted"`
	}{
		Budgets:    dtos,
		Unbudgeted: s.engine.UnbudgetedCategories(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p, err := parseBudgetPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.engine.SetBudget(core.BudgetCategory{
		Name:                 p.Name,
		Limit:                core.Money{Cents: p.LimitCents},
		NotificationsEnabled: p.NotificationsEnabled,
	})
	switch {
	case errors.Is(err, core.ErrEmptyBudgetName):
		writeError(w, http.StatusUnprocessableEntity, "budget name cannot be empty")
		return
	case errors.Is(err, core.ErrInvalidBudgetLimit):
		writeError(w, http.StatusUnprocessableEntity, "budget limit cannot be negative")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	name, err := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/api/budgets/"))
	if err != nil || strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "invalid budget name")
		return
	}

	s.engine.RemoveBudget(name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	months := parseWindowMonths(r)
	key := cache.Key(s.engine.Generation(), "series", strconv.Itoa(months))
	if cached, ok := s.seriesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dtos := toSeriesDTO(s.engine.MonthlySeries(months))
	s.seriesCache.Set(key, dtos)
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	var entries []core.CategoryBreakdownEntry
	if r.URL.Query().Get("chart") == "true" {
		entries = s.engine.ChartBreakdown()
	} else {
		entries = s.engine.CategoryBreakdown()
	}
	writeJSON(w, http.StatusOK, toBreakdownDTO(entries))
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	resp := struct {
		Alert *lossAlertDTO `json:"alert"`
	}{Alert: toLossAlertDTO(s.engine.LossAlert())}
	writeJSON(w, http.StatusOK, resp)
}
