// Package admin is the JSON API behind the course authoring screens.
package admin

import (
	"net/http"

	"github.com/s/investorAcademy/internal/handlers"
	"github.com/s/investorAcademy/internal/learning"
	"github.com/s/investorAcademy/internal/reorder"
)

type Service struct {
	*handlers.Handler
}

type courseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	IsPublished bool   `json:"is_published"`
}

func (in courseRequest) input() learning.CourseInput {
	return learning.CourseInput{Title: in.Title, Description: in.Description, IsPublished: in.IsPublished}
}

type lessonRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
	Notes    string `json:"notes" validate:"max=20000"`
}

func (in lessonRequest) input() learning.LessonInput {
	return learning.LessonInput{Title: in.Title, VideoURL: in.VideoURL, Notes: in.Notes}
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// ==========================================
// GET /api/courses, POST /api/courses
// ==========================================
func (s *Service) HandleCoursesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getCourses(w, r)
	case http.MethodPost:
		s.createCourse(w, r)
	default:
		handlers.JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ==========================================
// GET|PUT|DELETE /api/courses/{id}
// ==========================================
func (s *Service) HandleCourseByIDAPI(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getCourseByID(w, r, id)
	case http.MethodPut:
		s.updateCourse(w, r, id)
	case http.MethodDelete:
		s.deleteCourse(w, r, id)
	default:
		handlers.JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Service) getCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.Learning.ListCourses(r.Context(), s.UserID(r))
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, courses)
}

func (s *Service) createCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := s.DecodeJSON(r, &req); err != nil {
		s.WriteError(w, r, err)
		return
	}
	course, err := s.Learning.CreateCourse(r.Context(), s.UserID(r), req.input())
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, course)
}

func (s *Service) getCourseByID(w http.ResponseWriter, r *http.Request, id uint) {
	course, err := s.Learning.GetCourse(r.Context(), id)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, course)
}

func (s *Service) updateCourse(w http.ResponseWriter, r *http.Request, id uint) {
	var req courseRequest
	if err := s.DecodeJSON(r, &req); err != nil {
		s.WriteError(w, r, err)
		return
	}
	course, err := s.Learning.UpdateCourse(r.Context(), id, req.input())
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, course)
}

func (s *Service) deleteCourse(w http.ResponseWriter, r *http.Request, id uint) {
	if err := s.Learning.DeleteCourse(r.Context(), id); err != nil {
		s.WriteError(w, r, err)
		return
	}
	s.Log.Info("course deleted", "course_id", id, "actor_id", s.UserID(r))
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"message": "Course deleted successfully"})
}

// =======================
// LESSONS API
// =======================

// HandleLessonsAPI serves GET|POST /api/courses/{id}/lessons.
func (s *Service) HandleLessonsAPI(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		lessons, err := s.Learning.ListLessons(r.Context(), courseID)
		if err != nil {
			s.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, lessons)
	case http.MethodPost:
		var req lessonRequest
		if err := s.DecodeJSON(r, &req); err != nil {
			s.WriteError(w, r, err)
			return
		}
		lesson, err := s.Learning.CreateLesson(r.Context(), courseID, req.input())
		if err != nil {
			s.WriteError(w, r, err)
			return
		}
		handlers.WriteJSON(w, http.StatusCreated, lesson)
	default:
		handlers.JSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Service) UpdateLessonAPI(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	var req lessonRequest
	if err := s.DecodeJSON(r, &req); err != nil {
		s.WriteError(w, r, err)
		return
	}
	lesson, err := s.Learning.UpdateLesson(r.Context(), id, req.input())
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, lesson)
}

func (s *Service) DeleteLessonAPI(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	if err := s.Learning.DeleteLesson(r.Context(), id); err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MoveLessonAPI serves POST /api/lessons/{id}/move and answers with the
// course's lessons in their new order.
func (s *Service) MoveLessonAPI(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	var req moveRequest
	if err := s.DecodeJSON(r, &req); err != nil {
		s.WriteError(w, r, err)
		return
	}
	dir, err := reorder.ParseDirection(req.Direction)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}

	lesson, err := s.Repo.Lessons.GetByID(r.Context(), nil, id)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	lessons, err := s.Learning.ReorderLesson(r.Context(), s.UserID(r), lesson.CourseID, id, dir)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": lesson.CourseID,
		"lessons":   lessons,
	})
}

// GetOrderAPI serves GET /api/courses/{id}/order.
func (s *Service) GetOrderAPI(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	report, err := s.Learning.InspectOrder(r.Context(), courseID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, report)
}

// NormalizeOrderAPI serves POST /api/courses/{id}/order/normalize.
func (s *Service) NormalizeOrderAPI(w http.ResponseWriter, r *http.Request) {
	courseID, err := handlers.PathID(r, "id")
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	lessons, err := s.Learning.NormalizeOrder(r.Context(), s.UserID(r), courseID)
	if err != nil {
		s.WriteError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": courseID,
		"lessons":   lessons,
	})
}
