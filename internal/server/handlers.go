package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

type outlineRequest struct {
	Fragments []outline.TextFragment `json:"fragments"`
	PageCount int                    `json:"page_count"`
	// Config is laid over the server's pipeline config.
	Config json.RawMessage `json:"config,omitempty"`
	Refine *bool           `json:"refine,omitempty"`
}

type outlineResponse struct {
	RunID       string              `json:"run_id"`
	Entries     []outline.Candidate `json:"entries"`
	Bookmarks   []outline.Bookmark  `json:"bookmarks"`
	Tree        []*outline.Node     `json:"tree"`
	Diagnostics outline.Diagnostics `json:"diagnostics"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.PageCount <= 0 {
		req.PageCount = maxPage(req.Fragments)
	}

	cfg := s.opts.Pipeline.Clone()
	if len(req.Config) > 0 && string(req.Config) != "null" {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := cfg.Validate(); err != nil {
		jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := outline.Options{Config: cfg, Logger: s.log}
	if req.Refine == nil || *req.Refine {
		opts.Refiner = s.opts.Refiner
	}

	start := time.Now()
	res, err := outline.Infer(r.Context(), req.Fragments, req.PageCount, opts)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.observe(res.Diagnostics)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.metrics.runs.WithLabelValues("error").Inc()
		s.log.Warn("outline run failed", zap.String("run_id", res.RunID), zap.Error(err))
		jsonError(w, err.Error(), status)
		return
	}
	s.metrics.runs.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", res.RunID)
	_ = json.NewEncoder(w).Encode(outlineResponse{
		RunID:       res.RunID,
		Entries:     nonNil(res.Entries),
		Bookmarks:   nonNil(res.Bookmarks),
		Tree:        nonNil(res.Tree),
		Diagnostics: nonNil(res.Diagnostics),
	})
}

func maxPage(frags []outline.TextFragment) int {
	n := 0
	for _, f := range frags {
		n = max(n, f.Page)
	}
	return n
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
