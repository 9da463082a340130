package handlers

import (
	"net/http"

	"github.com/s/investorAcademy/internal/progress"
)

// HandleCourseProgress returns totals and per-lesson status for the signed-in
// learner. Only approved enrollments may read a course.
func (h *Handler) HandleCourseProgress(w http.ResponseWriter, r *http.Request) {
	courseID, err := PathID(r, "id")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	userID := h.UserID(r)
	if err := h.Learning.CheckAccess(r.Context(), userID, courseID); err != nil {
		h.WriteError(w, r, err)
		return
	}

	p, err := h.Learning.GetCourseProgress(r.Context(), courseID, userID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// CurrentlyCompleted is the status the client showed. When it is left out the
// stored status is used.
type toggleRequest struct {
	CurrentlyCompleted *bool `json:"currently_completed"`
}

// HandleToggleCompletion flips the lesson's completion and answers with the
// course progress read back after the write.
func (h *Handler) HandleToggleCompletion(w http.ResponseWriter, r *http.Request) {
	courseID, err := PathID(r, "id")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	lessonID, err := PathID(r, "lesson_id")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	var req toggleRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	userID := h.UserID(r)
	if err := h.Learning.CheckAccess(r.Context(), userID, courseID); err != nil {
		h.WriteError(w, r, err)
		return
	}
	var current bool
	if req.CurrentlyCompleted != nil {
		current = *req.CurrentlyCompleted
	} else {
		before, err := h.Learning.GetCourseProgress(r.Context(), courseID, userID)
		if err != nil {
			h.WriteError(w, r, err)
			return
		}
		current = before.StatusOf(lessonID) == progress.StatusCompleted
	}
	if err := h.Learning.ToggleLessonCompletion(r.Context(), userID, courseID, lessonID, current); err != nil {
		h.WriteError(w, r, err)
		return
	}

	p, err := h.Learning.GetCourseProgress(r.Context(), courseID, userID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}
