package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/csopt/internal/events"
	"github.com/MikeSquared-Agency/csopt/internal/models"
	"github.com/MikeSquared-Agency/csopt/internal/store"
)

const entityPrompt = "Prompt version"

type createPromptRequest struct {
	Name         string  `json:"name"`
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"`
	IsActive     bool    `json:"is_active"`
	Notes        *string `json:"notes"`
}

func (s *Server) listPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.store.ListPromptVersions(r.Context())
	if err != nil {
		s.storeError(w, r, err, entityPrompt)
		return
	}
	respondData(w, http.StatusOK, nonNil(prompts), "")
}

func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetPromptVersion(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, entityPrompt)
		return
	}
	respondData(w, http.StatusOK, p, "")
}

func (s *Server) activePrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetActivePromptVersion(r.Context())
	if err != nil {
		s.storeError(w, r, err, "Active prompt version")
		return
	}
	respondData(w, http.StatusOK, p, "")
}

func (s *Server) createPrompt(w http.ResponseWriter, r *http.Request) {
	var req createPromptRequest
	if !decode(w, r, &req) {
		return
	}
	var missing []string
	if blank(req.Name) {
		missing = append(missing, "name")
	}
	if blank(req.SystemPrompt) {
		missing = append(missing, "system_prompt")
	}
	if blank(req.UserPrompt) {
		missing = append(missing, "user_prompt")
	}
	if len(missing) > 0 {
		respondMissing(w, missing)
		return
	}

	created, err := s.store.CreatePromptVersion(r.Context(), models.PromptVersion{
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		IsActive:     req.IsActive,
		Notes:        req.Notes,
	})
	if err != nil {
		s.storeError(w, r, err, entityPrompt)
		return
	}
	if created.IsActive {
		s.publishActivated(created)
	}
	respondData(w, http.StatusCreated, created, "Prompt version created successfully")
}

func (s *Server) updatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch store.PromptPatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.store.UpdatePromptVersion(r.Context(), id, patch)
	if err != nil {
		s.storeError(w, r, err, entityPrompt)
		return
	}
	if patch.IsActive != nil && *patch.IsActive {
		s.publishActivated(updated)
	}
	respondData(w, http.StatusOK, updated, "Prompt version updated successfully")
}

func (s *Server) deletePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePromptVersion(r.Context(), id); err != nil {
		s.storeError(w, r, err, entityPrompt)
		return
	}
	respondMessage(w, "Prompt version deleted successfully")
}

func (s *Server) activatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.store.ActivatePromptVersion(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, entityPrompt)
		return
	}
	s.logger.Info("prompt version activated", "id", p.ID, "name", p.Name)
	s.publishActivated(p)
	respondData(w, http.StatusOK, p, "Prompt version activated successfully")
}

func (s *Server) publishActivated(p *models.PromptVersion) {
	s.publish(events.SubjectPromptActivated, map[string]any{
		"prompt_version_id": p.ID,
		"name":              p.Name,
	})
}
