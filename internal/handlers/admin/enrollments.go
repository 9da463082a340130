package admin

import (
	"net/http"
	"strconv"

	"github.com/s/investorAcademy/internal/handlers"
	"github.com/s/investorAcademy/internal/storage"
)

// GetEnrollmentsAPI serves GET /api/admin/enrollments?course_id=&status=&page=&limit=.
func (s *Service) GetEnrollmentsAPI(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	courseID, _ := strconv.ParseUint(query.Get("course_id"), 10, 64)

	result, err := s.Learning.ListEnrollments(r.Context(), storage.EnrollmentFilter{
		CourseID: uint(courseID),
		Status:   query.Get("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

type enrollmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// UpdateEnrollmentStatusAPI serves PUT /api/admin/enrollments/{id}.
func (s *Service) UpdateEnrollmentStatusAPI(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	var req enrollmentStatusRequest
	if err := s.DecodeJSON(r, &req); err != nil {
		s.WriteError(w, r, err)
		return
	}
	if err := s.Learning.UpdateEnrollmentStatus(r.Context(), id, req.Status); err != nil {
		s.WriteError(w, r, err)
		return
	}
	s.Log.Info("enrollment status changed", "enrollment_id", id, "status", req.Status, "actor_id", s.UserID(r))
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"result": "success"})
}
