package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/csopt/internal/models"
	"github.com/MikeSquared-Agency/csopt/internal/store"
)

const entityTestCase = "Test case"

func (s *Server) listTestCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.store.ListTestCases(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		s.storeError(w, r, err, entityTestCase)
		return
	}
	respondData(w, http.StatusOK, nonNil(cases), "")
}

func (s *Server) getTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tc, err := s.store.GetTestCase(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, entityTestCase)
		return
	}
	respondData(w, http.StatusOK, tc, "")
}

func (s *Server) createTestCase(w http.ResponseWriter, r *http.Request) {
	var tc models.TestCase
	if !decode(w, r, &tc) {
		return
	}
	var missing []string
	if blank(tc.Name) {
		missing = append(missing, "name")
	}
	if blank(tc.EmailThread) {
		missing = append(missing, "email_thread")
	}
	if len(missing) > 0 {
		respondMissing(w, missing)
		return
	}

	created, err := s.store.CreateTestCase(r.Context(), tc)
	if err != nil {
		s.storeError(w, r, err, entityTestCase)
		return
	}
	respondData(w, http.StatusCreated, created, "Test case created successfully")
}

func (s *Server) updateTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch store.TestCasePatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.store.UpdateTestCase(r.Context(), id, patch)
	if err != nil {
		s.storeError(w, r, err, entityTestCase)
		return
	}
	respondData(w, http.StatusOK, updated, "Test case updated successfully")
}

func (s *Server) deleteTestCase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteTestCase(r.Context(), id); err != nil {
		s.storeError(w, r, err, entityTestCase)
		return
	}
	respondMessage(w, "Test case deleted successfully")
}
