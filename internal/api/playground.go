package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/csopt/internal/evaluator"
	"github.com/MikeSquared-Agency/csopt/internal/generator"
	"github.com/MikeSquared-Agency/csopt/internal/knowledge"
	"github.com/MikeSquared-Agency/csopt/internal/suggest"
)

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generator.Request
	if !decode(w, r, &req) {
		return
	}
	if m := req.Missing(); len(m) > 0 {
		respondMissing(w, m)
		return
	}

	resp, err := s.generator.Run(r.Context(), req)
	if err != nil {
		s.upstreamError(w, err, "Failed to generate response")
		return
	}
	respondData(w, http.StatusOK, resp, "")
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluator.Request
	if !decode(w, r, &req) {
		return
	}
	if m := req.Missing(); len(m) > 0 {
		respondMissing(w, m)
		return
	}

	eval, err := s.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		s.upstreamError(w, err, "Failed to evaluate response")
		return
	}
	respondData(w, http.StatusOK, eval, "")
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	var req suggest.Request
	if !decode(w, r, &req) {
		return
	}
	if m := req.Missing(); len(m) > 0 {
		respondMissing(w, m)
		return
	}

	set, err := s.suggester.Suggest(r.Context(), req)
	if err != nil {
		s.upstreamError(w, err, "Failed to generate suggestions")
		return
	}
	respondData(w, http.StatusOK, set, "")
}

func (s *Server) applySuggestion(w http.ResponseWriter, r *http.Request) {
	var req knowledge.ApplyRequest
	if !decode(w, r, &req) {
		return
	}
	if m := req.Missing(); len(m) > 0 {
		respondMissing(w, m)
		return
	}

	res, err := s.mutator.Apply(r.Context(), req)
	if err != nil {
		s.storeError(w, r, err, entityKnowledge)
		return
	}
	respondData(w, http.StatusOK, res, res.Message)
}
