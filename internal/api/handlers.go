package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/searcher"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// matches below this similarity are noise
	minSearchScore = 0.2
)

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type searchHit struct {
	Name          string  `json:"name"`
	Brewery       string  `json:"brewery,omitempty"`
	Style         string  `json:"style,omitempty"`
	Establishment string  `json:"establishment"`
	ValueScore    float64 `json:"value_score"`
	Similarity    float32 `json:"similarity"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func parseLimit(r *http.Request) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return defaultLimit, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > maxLimit {
		return 0, false
	}
	return l, true
}

func (s *Server) listBeers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
		return
	}

	beers, err := s.store.RankedBeers(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("ranked feed query failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if beers == nil {
		beers = []models.RankedBeer{}
	}
	writeJSON(w, http.StatusOK, beers)
}

func (s *Server) listEstablishments(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListEstablishments(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("establishment query failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if list == nil {
		list = []models.EstablishmentSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing query", "q is required")
		return
	}

	results, err := searcher.Perform(r.Context(), s.store, s.embedder, q, searcher.DefaultLimit)
	if err != nil {
		log.Error().Err(err).Str("query", q).Msg("search failed")
		writeProblem(w, http.StatusBadGateway, "Search failed", "")
		return
	}

	hits := []searchHit{}
	for _, res := range results {
		if res.Score < minSearchScore {
			continue
		}
		hits = append(hits, searchHit{
			Name:          res.Beer.Name,
			Brewery:       res.Beer.Brewery,
			Style:         res.Beer.Style,
			Establishment: res.Beer.Establishment,
			ValueScore:    res.Beer.ValueScore,
			Similarity:    res.Score,
		})
	}
	writeJSON(w, http.StatusOK, hits)
}
