package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/davorpavlov/props-engine/internal/models"
	"github.com/davorpavlov/props-engine/internal/nbastats"
)

// envelope is the uniform JSON response shape
type envelope struct {
	Success   bool        `json:"success"`
	Timestamp time.Time   `json:"timestamp"`
	Count     *int        `json:"count,omitempty"`
	Results   interface{} `json:"results,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	body.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeResults(w http.ResponseWriter, results interface{}, count int) {
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Results: results})
}

// writeError maps domain errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidProp), errors.Is(err, models.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	default:
		var provErr nbastats.ProviderError
		if errors.As(err, &provErr) {
			status = http.StatusBadGateway
		}
	}
	s.writeJSON(w, status, envelope{Success: false, Error: err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Results: map[string]interface{}{
			"service": "props-engine",
			"endpoints": []string{
				"GET /health",
				"GET /metrics",
				"GET /api/daily-analysis",
				"POST /api/player-analysis",
				"GET /api/todays-games",
				"GET /api/player-search?name=",
				"GET /api/team-search?name=",
				"GET /ws",
			},
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Results: map[string]string{"status": "healthy", "service": "props-engine"},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, envelope{Success: false, Error: "endpoint not found"})
}

// handleDailyAnalysis runs a full slate sweep and returns the picks.
// Query parameters narrow the response: prop_types (comma separated),
// min_confidence and top_n.
func (s *Server) handleDailyAnalysis(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.RunDailyAnalysis(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	picks := run.Picks
	if raw := r.URL.Query().Get("prop_types"); raw != "" {
		wanted := make(map[models.PropType]bool)
		for _, part := range strings.Split(raw, ",") {
			wanted[models.PropType(strings.TrimSpace(part))] = true
		}
		filtered := picks[:0:0]
		for _, pick := range picks {
			if wanted[pick.PropType] {
				filtered = append(filtered, pick)
			}
		}
		picks = filtered
	}
	if raw := r.URL.Query().Get("min_confidence"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid min_confidence"})
			return
		}
		filtered := picks[:0:0]
		for _, pick := range picks {
			if pick.ConfidenceScore >= min {
				filtered = append(filtered, pick)
			}
		}
		picks = filtered
	}
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid top_n"})
			return
		}
		if n < len(picks) {
			picks = picks[:n]
		}
	}

	rounded := make([]models.PropAnalysis, len(picks))
	for i := range picks {
		rounded[i] = picks[i].Rounded()
	}

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Count:   intPtr(len(rounded)),
		Results: map[string]interface{}{
			"summary": run.Summary,
			"picks":   rounded,
		},
	})
}

// playerAnalysisRequest is the POST body for per-player analysis. Lines
// set to zero are estimated from the player's recent average.
type playerAnalysisRequest struct {
	Player   string                       `json:"player"`
	Opponent string                       `json:"opponent"`
	IsHome   bool                         `json:"is_home"`
	Props    map[models.PropType]float64  `json:"props"`
}

func (s *Server) handlePlayerAnalysis(w http.ResponseWriter, r *http.Request) {
	var req playerAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid request body"})
		return
	}
	if req.Player == "" || req.Opponent == "" {
		s.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "player and opponent are required"})
		return
	}
	if len(req.Props) == 0 {
		req.Props = make(map[models.PropType]float64)
		for _, pt := range models.AllPropTypes() {
			req.Props[pt] = 0
		}
	}

	result, err := s.service.AnalyzePlayerProps(r.Context(), req.Player, req.Opponent, req.IsHome, req.Props)
	if err != nil {
		s.writeError(w, err)
		return
	}

	for i, pr := range result.Results {
		if pr.Analysis != nil {
			rounded := pr.Analysis.Rounded()
			result.Results[i].Analysis = &rounded
		}
	}
	s.writeResults(w, result, len(result.Results))
}

func (s *Server) handleTodaysGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.provider.FetchTodaysGames(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResults(w, games, len(games))
}

func (s *Server) handlePlayerSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "name query parameter is required"})
		return
	}

	player, err := s.provider.SearchPlayer(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResults(w, player, 1)
}

func (s *Server) handleTeamSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "name query parameter is required"})
		return
	}

	team, err := s.provider.SearchTeam(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResults(w, team, 1)
}

func intPtr(v int) *int { return &v }
