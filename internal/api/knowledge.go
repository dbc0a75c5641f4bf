package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/csopt/internal/models"
	"github.com/MikeSquared-Agency/csopt/internal/store"
	"github.com/MikeSquared-Agency/csopt/internal/wizard"
)

const entityKnowledge = "Knowledge entry"

type createKnowledgeRequest struct {
	Category     string  `json:"category"`
	Key          string  `json:"key"`
	Value        string  `json:"value"`
	DisplayTitle *string `json:"display_title"`
	SortOrder    *int    `json:"sort_order"`
}

func (req createKnowledgeRequest) missing() []string {
	var m []string
	if blank(req.Category) {
		m = append(m, "category")
	}
	if blank(req.Key) {
		m = append(m, "key")
	}
	if req.Value == "" {
		m = append(m, "value")
	}
	return m
}

func (s *Server) listKnowledge(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListKnowledge(r.Context())
	if err != nil {
		s.storeError(w, r, err, entityKnowledge)
		return
	}
	respondData(w, http.StatusOK, nonNil(entries), "")
}

func (s *Server) getKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.store.GetKnowledge(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, entityKnowledge)
		return
	}
	respondData(w, http.StatusOK, e, "")
}

func (s *Server) createKnowledge(w http.ResponseWriter, r *http.Request) {
	var req createKnowledgeRequest
	if !decode(w, r, &req) {
		return
	}
	if m := req.missing(); len(m) > 0 {
		respondMissing(w, m)
		return
	}

	entry := models.KnowledgeEntry{
		Category:     req.Category,
		Key:          req.Key,
		Value:        req.Value,
		DisplayTitle: req.DisplayTitle,
	}
	if req.SortOrder != nil {
		entry.SortOrder = *req.SortOrder
	} else {
		next, err := s.store.NextKnowledgeSortOrder(r.Context(), req.Category)
		if err != nil {
			s.storeError(w, r, err, entityKnowledge)
			return
		}
		entry.SortOrder = next
	}

	created, err := s.store.CreateKnowledge(r.Context(), entry)
	if err != nil {
		s.storeError(w, r, err, entityKnowledge)
		return
	}
	respondData(w, http.StatusCreated, created, "Knowledge entry created successfully")
}

func (s *Server) updateKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch store.KnowledgePatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.store.UpdateKnowledge(r.Context(), id, patch)
	if err != nil {
		s.storeError(w, r, err, entityKnowledge)
		return
	}
	respondData(w, http.StatusOK, updated, "Knowledge entry updated successfully")
}

func (s *Server) deleteKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteKnowledge(r.Context(), id); err != nil {
		s.storeError(w, r, err, entityKnowledge)
		return
	}
	respondMessage(w, "Knowledge entry deleted successfully")
}

type createWizardStepRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (s *Server) listWizardSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := s.store.ListWizardSteps(r.Context())
	if err != nil {
		s.storeError(w, r, err, "Wizard step")
		return
	}
	respondData(w, http.StatusOK, nonNil(steps), "")
}

func (s *Server) createWizardStep(w http.ResponseWriter, r *http.Request) {
	var req createWizardStepRequest
	if !decode(w, r, &req) {
		return
	}
	var missing []string
	if blank(req.Title) {
		missing = append(missing, "title")
	}
	if blank(req.Category) {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		respondMissing(w, missing)
		return
	}

	created, err := s.store.CreateWizardStep(r.Context(), req.Title, req.Category)
	if err != nil {
		s.storeError(w, r, err, "Wizard step")
		return
	}
	if !created {
		respondError(w, http.StatusConflict, "Wizard step already exists for category "+req.Category)
		return
	}

	steps, err := s.store.ListWizardSteps(r.Context())
	if err != nil {
		s.storeError(w, r, err, "Wizard step")
		return
	}
	for _, step := range steps {
		if step.Category == req.Category {
			respondData(w, http.StatusCreated, step, "Wizard step created successfully")
			return
		}
	}
	respondMessage(w, "Wizard step created successfully")
}

func (s *Server) wizardStatus(w http.ResponseWriter, r *http.Request) {
	steps, err := s.store.ListWizardSteps(r.Context())
	if err != nil {
		s.storeError(w, r, err, "Wizard status")
		return
	}
	entries, err := s.store.ListKnowledge(r.Context())
	if err != nil {
		s.storeError(w, r, err, "Wizard status")
		return
	}
	respondData(w, http.StatusOK, wizard.Calculate(wizard.Categories(steps), entries), "")
}
