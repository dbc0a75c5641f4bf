package api

import (
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/csopt/internal/events"
	"github.com/MikeSquared-Agency/csopt/internal/models"
	"github.com/MikeSquared-Agency/csopt/internal/store"
)

const entityResult = "Test result"

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.ResultFilter
	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"test_case_id", &f.TestCaseID},
		{"prompt_version_id", &f.PromptVersionID},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		id, err := parseID(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid "+p.name)
			return
		}
		*p.dst = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		f.Limit = n
	}

	results, err := s.store.ListTestResults(r.Context(), f)
	if err != nil {
		s.storeError(w, r, err, entityResult)
		return
	}
	respondData(w, http.StatusOK, nonNil(results), "")
}

func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := s.store.GetTestResult(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, entityResult)
		return
	}
	respondData(w, http.StatusOK, res, "")
}

func (s *Server) createResult(w http.ResponseWriter, r *http.Request) {
	var in models.TestResult
	if !decode(w, r, &in) {
		return
	}
	var missing []string
	if in.TestCaseID == 0 {
		missing = append(missing, "test_case_id")
	}
	if in.PromptVersionID == 0 {
		missing = append(missing, "prompt_version_id")
	}
	if blank(in.AgentResponse) {
		missing = append(missing, "agent_response")
	}
	if len(missing) > 0 {
		respondMissing(w, missing)
		return
	}
	if in.EvaluatorScore != nil && (*in.EvaluatorScore < 0 || *in.EvaluatorScore > 100) {
		respondError(w, http.StatusBadRequest, "evaluator_score must be between 0 and 100")
		return
	}

	saved, err := s.store.CreateTestResult(r.Context(), in)
	if err != nil {
		s.storeError(w, r, err, entityResult)
		return
	}

	s.publish(events.SubjectResultSaved, map[string]any{
		"result_id":         saved.ID,
		"test_case_id":      saved.TestCaseID,
		"prompt_version_id": saved.PromptVersionID,
		"evaluator_score":   saved.EvaluatorScore,
	})
	respondData(w, http.StatusCreated, saved, "Test result saved successfully")
}
