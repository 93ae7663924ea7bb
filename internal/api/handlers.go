package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yourusername/sharpeye/internal/cache"
	"github.com/yourusername/sharpeye/internal/models"
)

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if !s.decode(w, r, &req) {
		return
	}

	key, cacheable := "", false
	if s.cache != nil {
		key, cacheable = cache.Key(req, s.cfg.SnapshotVersion())
	}
	if cacheable {
		resp, hit, err := s.cache.Get(r.Context(), key)
		if err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Response cache lookup failed")
		} else if hit {
			s.respondJSON(w, http.StatusOK, resp)
			return
		}
	}

	resp, err := s.engine.Predict(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if cacheable {
		if err := s.cache.Set(r.Context(), key, resp); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Response cache store failed")
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	var req models.BoardRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.engine.Board(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(chi.URLParam(r, "player_id"), 10, 64)
	if err != nil {
		s.badRequest(w, r, "player_id", "must be an integer")
		return
	}

	q := r.URL.Query()
	req := models.PredictionRequest{
		PlayerID:   playerID,
		OpponentID: q.Get("opponent_id"),
		Location:   models.Location(q.Get("location")),
		GameDate:   q.Get("game_date"),
	}

	if req.PropLine, err = optionalFloatParam(q.Get("prop_line")); err != nil {
		s.badRequest(w, r, "prop_line", "must be a number")
		return
	}
	if req.OverOdds, err = optionalIntParam(q.Get("over_odds")); err != nil {
		s.badRequest(w, r, "over_odds", "must be an integer")
		return
	}
	if req.UnderOdds, err = optionalIntParam(q.Get("under_odds")); err != nil {
		s.badRequest(w, r, "under_odds", "must be an integer")
		return
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.badRequest(w, r, "seed", "must be an integer")
			return
		}
		req.Seed = &seed
	}

	dist, err := s.engine.Distribution(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, dist)
}

// decode reads a JSON body into dst and writes a 400 when it cannot
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		s.badRequest(w, r, "body", decodeReason(err))
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		s.badRequest(w, r, "body", "must contain a single JSON object")
		return false
	}
	return true
}

func decodeReason(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "is empty"
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &sizeErr):
		return fmt.Sprintf("exceeds %d bytes", sizeErr.Limit)
	default:
		return err.Error()
	}
}

func optionalFloatParam(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite value %q", v)
	}
	return &f, nil
}

func optionalIntParam(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
