package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"estateparser/internal/domain"
	"estateparser/internal/storage"
)

// handleParsePost accepts either a single site object or an array of them in
// the request body and responds with the flat array of extracted listings.
func (s *Server) handleParsePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON in request body: "+err.Error())
		return
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON in request body: "+err.Error())
		return
	}

	s.processParse(w, r, payload)
}

// handleParseGet is the query-parameter variant: the JSON payload arrives in
// the 'data' parameter, or 'json' as an alias.
func (s *Server) handleParseGet(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("data")
	if raw == "" {
		raw = r.URL.Query().Get("json")
	}
	if raw == "" {
		s.respondWithError(w, http.StatusBadRequest, "No data provided. Use 'data' or 'json' query parameter")
		return
	}

	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON in query parameter")
		return
	}

	s.processParse(w, r, payload)
}

func (s *Server) processParse(w http.ResponseWriter, r *http.Request, payload any) {
	sites, errMsg := normalizeSites(payload)
	if errMsg != "" {
		s.respondWithError(w, http.StatusBadRequest, errMsg)
		return
	}

	ctx := r.Context()

	var cacheKey string
	if s.cache != nil {
		if canon, err := json.Marshal(sites); err == nil {
			cacheKey = storage.Key(canon)
			if body, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
				s.logger.Warn("cache lookup failed", zap.Error(err))
			} else if ok {
				s.logger.Debug("serving cached response")
				s.writeJSONBody(w, http.StatusOK, body)
				return
			}
		}
	}

	listings := s.parser.ParseAll(ctx, sites)

	body, err := json.Marshal(listings)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not encode results")
		return
	}

	if s.store != nil {
		if err := s.store.SaveListings(ctx, listings); err != nil {
			s.logger.Error("failed to save listings", zap.Error(err))
			s.metrics.IncErrorsTotal("db_save_failed")
		}
	}
	if s.cache != nil && cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, body); err != nil {
			s.logger.Warn("cache store failed", zap.Error(err))
		}
	}

	s.writeJSONBody(w, http.StatusOK, body)
}

// normalizeSites turns the decoded payload into the site list. A single
// object is wrapped into a one-element list. The returned message is empty on
// success and a client-facing validation error otherwise; only the presence
// of the two required keys is checked here, empty values are handled further
// down the pipeline as per-site skips.
func normalizeSites(payload any) ([]domain.SiteRequest, string) {
	var items []any
	switch v := payload.(type) {
	case map[string]any:
		items = []any{v}
	case []any:
		items = v
	default:
		return nil, "Expected an object with 'site_url' and 'selectors' or an array of such objects"
	}

	sites := make([]domain.SiteRequest, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, "Each site must be an object"
		}
		rawURL, ok := obj["site_url"]
		if !ok {
			return nil, "Each site must have 'site_url' field"
		}
		rawSelectors, ok := obj["selectors"]
		if !ok {
			return nil, "Each site must have 'selectors' field"
		}

		// Values of unexpected types degrade to empty, which the parser
		// reports as a skipped site.
		siteURL, _ := rawURL.(string)
		var selectors map[string]string
		if m, ok := rawSelectors.(map[string]any); ok && len(m) > 0 {
			selectors = make(map[string]string, len(m))
			for k, v := range m {
				if sel, ok := v.(string); ok {
					selectors[k] = sel
				}
			}
		}

		sites = append(sites, domain.SiteRequest{SiteURL: siteURL, Selectors: selectors})
	}

	return sites, ""
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := map[string]string{"status": "ok"}
	healthy := true

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Error("health check failed for postgres", zap.Error(err))
			health["postgres"] = "unhealthy"
			healthy = false
		} else {
			health["postgres"] = "healthy"
		}
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			s.logger.Error("health check failed for redis", zap.Error(err))
			health["redis"] = "unhealthy"
			healthy = false
		} else {
			health["redis"] = "healthy"
		}
	}

	if !healthy {
		health["status"] = "degraded"
		s.respondWithJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	s.respondWithJSON(w, http.StatusOK, health)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	s.writeJSONBody(w, code, response)
}

func (s *Server) writeJSONBody(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
