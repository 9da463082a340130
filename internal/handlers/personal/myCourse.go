// Package personal serves the learner's own cabinet: enrolled courses,
// "continue learning" and enrollment requests.
package personal

import (
	"net/http"

	"github.com/s/investorAcademy/internal/handlers"
)

type Service struct {
	*handlers.Handler
}

// HandleMyCourses lists approved enrollments with their progress.
func (s *Service) HandleMyCourses(w http.ResponseWriter, r *http.Request) {
	views, err := s.Learning.MyCourses(r.Context(), s.UserID(r))
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"courses": views})
}

type resumeResponse struct {
	Found  bool        `json:"found"`
	Target interface{} `json:"target,omitempty"`
}

func (s *Service) HandleResume(w http.ResponseWriter, r *http.Request) {
	target, ok, err := s.Learning.ResumeForUser(r.Context(), s.UserID(r))
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	resp := resumeResponse{Found: ok}
	if ok {
		resp.Target = target
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

type enrollRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

func (s *Service) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := s.DecodeJSON(r, &req); err != nil {
		s.WriteError(w, r, err)
		return
	}
	e, err := s.Learning.SubmitEnrollment(r.Context(), s.UserID(r), req.CourseID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":         "success",
		"enrollment_id":  e.ID,
		"request_status": e.Status,
	})
}
