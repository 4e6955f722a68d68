package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seatcall/seatcall/pkg/core/engine"
	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
	"github.com/seatcall/seatcall/pkg/core/services"
	"github.com/seatcall/seatcall/pkg/db"
	"github.com/seatcall/seatcall/pkg/importer"
)

type ledgerResponse struct {
	Pool  model.PoolKey     `json:"pool"`
	Round int               `json:"round"`
	Rows  []model.LedgerRow `json:"rows"`
}

type generateResponse struct {
	Round      int                   `json:"round"`
	Multiplier float64               `json:"multiplier"`
	Selected   int                   `json:"selected"`
	Results    []*engine.RoundResult `json:"results"`
}

type disqualifyRequest struct {
	IDs []string `json:"ids"`
}

type disqualifyResponse struct {
	Disqualified []*model.Candidate `json:"disqualified"`
	NextRound    int                `json:"nextRound"`
	Ledgers      []ledgerResponse   `json:"ledgers"`
}

type roundResponse struct {
	Round      int                `json:"round"`
	Candidates []*model.Candidate `json:"candidates"`
}

type callResponse struct {
	ID          string        `json:"id"`
	Round       int           `json:"round"`
	Pool        model.PoolKey `json:"pool"`
	Multiplier  float64       `json:"multiplier"`
	Offered     int           `json:"offered"`
	Filled      int           `json:"filled"`
	GeneratedAt string        `json:"generatedAt"`
}

func (s *Server) loadCandidates(w http.ResponseWriter, r *http.Request) {
	pool := poolKey(r)
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := services.LoadCandidatesFromCSV(r.Context(), s.store, s.cfg, s.logger, body, pool)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"loaded": result.Loaded})
}

func (s *Server) defineSeats(w http.ResponseWriter, r *http.Request) {
	var body map[string]int
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	offered, err := quota.CountsFromMap(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := services.DefineSeats(r.Context(), s.store, s.cfg, s.logger, poolKey(r), offered)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ledgerResponse(*view))
}

func (s *Server) viewLedger(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := services.ViewLedger(r.Context(), s.store, s.cfg, s.logger, poolKey(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ledgerResponse(*view))
}

func (s *Server) currentRound(w http.ResponseWriter, r *http.Request) {
	pool := poolKey(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := services.CurrentRound(r.Context(), s.store, s.cfg, s.logger, pool)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pool": pool, "round": round})
}

func (s *Server) generatePool(w http.ResponseWriter, r *http.Request) {
	pool := poolKey(r)
	s.generate(w, r, &pool)
}

func (s *Server) generateAll(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, nil)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, pool *model.PoolKey) {
	multiplier := 0.0
	if raw := r.URL.Query().Get("multiplier"); raw != "" {
		m, err := strconv.ParseFloat(raw, 64)
		if err != nil || m <= 0 {
			writeError(w, http.StatusBadRequest, "BAD_MULTIPLIER", fmt.Sprintf("invalid multiplier %q", raw))
			return
		}
		multiplier = m
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := services.GenerateCall(r.Context(), s.store, s.cfg, s.logger, pool, multiplier, s.now())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		Round:      result.Round,
		Multiplier: result.Multiplier,
		Selected:   result.Selected(),
		Results:    result.Results,
	})
}

func (s *Server) disqualify(w http.ResponseWriter, r *http.Request) {
	var req disqualifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := services.Disqualify(r.Context(), s.store, s.cfg, s.logger, req.IDs)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := disqualifyResponse{
		Disqualified: result.Disqualified,
		NextRound:    result.NextRound,
		Ledgers:      make([]ledgerResponse, 0, len(result.Ledgers)),
	}
	for pool, ledger := range result.Ledgers {
		resp.Ledgers = append(resp.Ledgers, ledgerResponse{Pool: pool, Round: result.NextRound, Rows: ledger.Rows()})
	}
	if resp.Disqualified == nil {
		resp.Disqualified = []*model.Candidate{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) viewRound(w http.ResponseWriter, r *http.Request) {
	round, ok := roundParam(w, r)
	if !ok {
		return
	}
	all := r.URL.Query().Get("all") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates, err := services.ViewRound(r.Context(), s.store, s.cfg, s.logger, round, all)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roundResponse{Round: round, Candidates: candidates})
}

func (s *Server) exportCall(w http.ResponseWriter, r *http.Request) {
	round, ok := roundParam(w, r)
	if !ok {
		return
	}
	all := r.URL.Query().Get("all") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()

	// Resolve the round before writing headers so a missing round still gets a JSON error
	candidates, err := services.ViewRound(r.Context(), s.store, s.cfg, s.logger, round, all)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"chamada-%d.csv\"", round))
	w.WriteHeader(http.StatusOK)
	if err := importer.WriteCall(w, candidates); err != nil {
		s.logger.Warn("Failed to stream call export")
	}
}

func (s *Server) classification(w http.ResponseWriter, r *http.Request) {
	pool := poolKey(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates, err := services.ClassificationReport(r.Context(), s.store, s.cfg, s.logger, pool, nil)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = importer.WriteClassification(w, candidates)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pool": pool, "candidates": candidates})
}

func (s *Server) listCalls(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls, err := services.ListCalls(r.Context(), s.store, s.logger)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCallResponses(calls))
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := services.Reset(r.Context(), s.store, s.logger); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func poolKey(r *http.Request) model.PoolKey {
	return model.PoolKey{
		Unit:    pathParam(r, "unit"),
		Program: pathParam(r, "program"),
		Shift:   pathParam(r, "shift"),
	}
}

// pathParam decodes a route parameter; chi matches on the raw path when it carries
// escapes such as %2F
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func roundParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "round")
	round, err := strconv.Atoi(raw)
	if err != nil || round < 1 {
		writeError(w, http.StatusBadRequest, "BAD_ROUND", fmt.Sprintf("invalid round %q", raw))
		return 0, false
	}
	return round, true
}

func toCallResponses(calls []db.Call) []callResponse {
	out := make([]callResponse, len(calls))
	for i, c := range calls {
		out[i] = callResponse{
			ID:          c.ID,
			Round:       c.Round,
			Pool:        model.PoolKey{Unit: c.Unit, Program: c.Program, Shift: c.Shift},
			Multiplier:  c.Multiplier,
			Offered:     c.Offered,
			Filled:      c.Filled,
			GeneratedAt: c.GeneratedAt,
		}
	}
	return out
}
