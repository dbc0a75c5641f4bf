package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/csopt/internal/models"
	"github.com/MikeSquared-Agency/csopt/internal/store"
)

const entityRule = "Evaluator rule"

type createRuleRequest struct {
	Name            string  `json:"name"`
	CheckPrompt     string  `json:"check_prompt"`
	Description     *string `json:"description"`
	Priority        *int    `json:"priority"`
	IsActive        *bool   `json:"is_active"`
	Category        *string `json:"category"`
	KnowledgeBaseID *int64  `json:"knowledge_base_id"`
}

type updateRuleRequest struct {
	ID *int64 `json:"id"`
	store.RulePatch
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	rules, err := s.store.ListEvaluatorRules(r.Context(), all)
	if err != nil {
		s.storeError(w, r, err, entityRule)
		return
	}
	respondData(w, http.StatusOK, nonNil(rules), "")
}

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if !decode(w, r, &req) {
		return
	}
	var missing []string
	if blank(req.Name) {
		missing = append(missing, "name")
	}
	if blank(req.CheckPrompt) {
		missing = append(missing, "check_prompt")
	}
	if len(missing) > 0 {
		respondMissing(w, missing)
		return
	}

	rule := models.EvaluatorRule{
		Name:            req.Name,
		CheckPrompt:     req.CheckPrompt,
		Description:     req.Description,
		IsActive:        true,
		Category:        req.Category,
		KnowledgeBaseID: req.KnowledgeBaseID,
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	created, err := s.store.CreateEvaluatorRule(r.Context(), rule)
	if err != nil {
		s.storeError(w, r, err, entityRule)
		return
	}
	respondData(w, http.StatusCreated, created, "")
}

func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	var req updateRuleRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID == nil || *req.ID <= 0 {
		respondMissing(w, []string{"id"})
		return
	}
	if req.RulePatch.Empty() {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	updated, err := s.store.UpdateEvaluatorRule(r.Context(), *req.ID, req.RulePatch)
	if err != nil {
		s.storeError(w, r, err, entityRule)
		return
	}
	respondData(w, http.StatusOK, updated, "")
}

func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		respondMissing(w, []string{"id"})
		return
	}
	id, err := parseID(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := s.store.DeleteEvaluatorRule(r.Context(), id); err != nil {
		s.storeError(w, r, err, entityRule)
		return
	}
	respondMessage(w, "Rule deleted successfully")
}
