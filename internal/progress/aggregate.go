// Package progress derives per-course and per-lesson learning state from a
// course's ordered lessons and a user's completion records. Nothing here is
// stored; callers recompute after every write.
package progress

import (
	"time"

	"github.com/s/investorAcademy/internal/models"
)

type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in_progress"
	StatusNotStarted Status = "not_started"
)

type LessonStatus struct {
	LessonID    uint       `json:"lesson_id"`
	Title       string     `json:"title"`
	OrderKey    int        `json:"order_key"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type CourseProgress struct {
	CourseID        uint           `json:"course_id"`
	TotalLessons    int            `json:"total_lessons"`
	CompletedCount  int            `json:"completed_count"`
	CompletionRatio float64        `json:"completion_ratio"`
	Percent         int            `json:"percent"`
	Lessons         []LessonStatus `json:"lessons"`
}

// Aggregate computes course totals and one status per lesson, in the order
// given. Records for lessons outside the sequence are ignored, which keeps
// CompletedCount <= TotalLessons.
func Aggregate(courseID uint, lessons []models.Lesson, records []models.LessonProgress) CourseProgress {
	done := make(map[uint]time.Time, len(records))
	for _, rec := range records {
		done[rec.LessonID] = rec.CompletedAt
	}

	out := CourseProgress{
		CourseID:     courseID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonStatus, 0, len(lessons)),
	}

	// only the lesson right after a completed one counts as in progress
	prevCompleted := false
	for _, l := range lessons {
		st := LessonStatus{LessonID: l.ID, Title: l.Title, OrderKey: l.OrderKey}
		if at, ok := done[l.ID]; ok {
			at := at
			st.Status = StatusCompleted
			st.CompletedAt = &at
			out.CompletedCount++
		} else if prevCompleted {
			st.Status = StatusInProgress
		} else {
			st.Status = StatusNotStarted
		}
		prevCompleted = st.Status == StatusCompleted
		out.Lessons = append(out.Lessons, st)
	}

	if out.TotalLessons > 0 {
		out.CompletionRatio = float64(out.CompletedCount) / float64(out.TotalLessons)
		out.Percent = out.CompletedCount * 100 / out.TotalLessons
	}
	return out
}

// StatusOf returns the status of lessonID, or not_started if it is not part of the course.
func (p CourseProgress) StatusOf(lessonID uint) Status {
	for _, l := range p.Lessons {
		if l.LessonID == lessonID {
			return l.Status
		}
	}
	return StatusNotStarted
}
