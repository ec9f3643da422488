package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/argmap/internal/model"
)

// AddClaim creates a claim; an empty id gets a generated one
func (s *Server) AddClaim(c *gin.Context) {
	var claim model.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		badRequest(c, "invalid claim: "+err.Error())
		return
	}

	added, snap, err := s.store.AddClaim(claim)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutated(c, snap, http.StatusCreated, gin.H{"claim": added})
}

// UpdateClaim replaces the claim named in the path
func (s *Server) UpdateClaim(c *gin.Context) {
	var claim model.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		badRequest(c, "invalid claim: "+err.Error())
		return
	}
	id := c.Param("id")
	if claim.ID == "" {
		claim.ID = id
	}
	if claim.ID != id {
		badRequest(c, "claim id in body does not match the path")
		return
	}

	snap, err := s.store.UpdateClaim(claim)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutated(c, snap, http.StatusOK, gin.H{"claim": claim})
}

// DeleteClaim also removes every implication that references the claim
func (s *Server) DeleteClaim(c *gin.Context) {
	removed, snap, err := s.store.DeleteClaim(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if removed == nil {
		removed = []string{}
	}
	s.mutated(c, snap, http.StatusOK, gin.H{"removed_implications": removed})
}

// AddImplication creates an implication; premises may reference claims that do not exist yet
func (s *Server) AddImplication(c *gin.Context) {
	var impl model.Implication
	if err := c.ShouldBindJSON(&impl); err != nil {
		badRequest(c, "invalid implication: "+err.Error())
		return
	}

	added, snap, err := s.store.AddImplication(impl)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutated(c, snap, http.StatusCreated, gin.H{"implication": added})
}

// UpdateImplication replaces the implication named in the path
func (s *Server) UpdateImplication(c *gin.Context) {
	var impl model.Implication
	if err := c.ShouldBindJSON(&impl); err != nil {
		badRequest(c, "invalid implication: "+err.Error())
		return
	}
	id := c.Param("id")
	if impl.ID == "" {
		impl.ID = id
	}
	if impl.ID != id {
		badRequest(c, "implication id in body does not match the path")
		return
	}

	snap, err := s.store.UpdateImplication(impl)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutated(c, snap, http.StatusOK, gin.H{"implication": impl})
}

// DeleteImplication removes one implication; its claims stay
func (s *Server) DeleteImplication(c *gin.Context) {
	snap, err := s.store.DeleteImplication(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutated(c, snap, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

type entailmentRequest struct {
	Status      model.EntailmentStatus `json:"status"`
	Explanation string                 `json:"explanation"`
}

// SetEntailment records an external entailment verdict; costs are unaffected
func (s *Server) SetEntailment(c *gin.Context) {
	var req entailmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid entailment: "+err.Error())
		return
	}
	switch req.Status {
	case model.EntailmentUnknown, model.EntailmentEntailed, model.EntailmentNotEntailed, model.EntailmentUncertain:
	default:
		badRequest(c, "status must be one of entailed, not_entailed, uncertain or empty")
		return
	}

	snap, err := s.store.SetEntailment(c.Param("id"), req.Status, req.Explanation)
	if err != nil {
		s.fail(c, err)
		return
	}
	impl, _ := snap.Implication(c.Param("id"))
	s.mutated(c, snap, http.StatusOK, gin.H{"implication": impl})
}

type cleanupRequest struct {
	Goals []string `json:"goals"`
}

// Cleanup removes everything unreachable from the goals.
// An empty body uses the document's goals.
func (s *Server) Cleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid cleanup request: "+err.Error())
		return
	}
	goals := req.Goals
	if len(goals) == 0 {
		goals = s.store.Goals()
	}

	removed, snap, err := s.store.Cleanup(goals)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutated(c, snap, http.StatusOK, gin.H{"removed": removed, "goals": goals})
}
