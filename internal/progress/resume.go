package progress

import "github.com/s/investorAcademy/internal/models"

// CourseSnapshot is one enrolled course as seen by the resume selector.
type CourseSnapshot struct {
	Course   models.Course
	Lessons  []models.Lesson
	Progress CourseProgress
}

type ResumeTarget struct {
	CourseID    uint   `json:"course_id"`
	CourseTitle string `json:"course_title"`
	LessonID    uint   `json:"lesson_id"`
	LessonTitle string `json:"lesson_title"`
}

// NextLesson is the first lesson without a completion record, or the last
// lesson when everything is complete. ok is false for an empty course.
func NextLesson(lessons []models.Lesson, p CourseProgress) (models.Lesson, bool) {
	if len(lessons) == 0 {
		return models.Lesson{}, false
	}
	completed := make(map[uint]bool, len(p.Lessons))
	for _, st := range p.Lessons {
		if st.Status == StatusCompleted {
			completed[st.LessonID] = true
		}
	}
	for _, l := range lessons {
		if !completed[l.ID] {
			return l, true
		}
	}
	return lessons[len(lessons)-1], true
}

// SelectResume picks the course with the lowest completion ratio among courses
// that have lessons. Equal ratios keep the first course in input order.
// ok is false when no course has any lessons.
func SelectResume(courses []CourseSnapshot) (ResumeTarget, bool) {
	var (
		best      ResumeTarget
		bestRatio float64
		found     bool
	)
	for _, c := range courses {
		if c.Progress.TotalLessons == 0 {
			continue
		}
		lesson, ok := NextLesson(c.Lessons, c.Progress)
		if !ok {
			continue
		}
		if found && !(c.Progress.CompletionRatio < bestRatio) {
			continue
		}
		best = ResumeTarget{
			CourseID:    c.Course.ID,
			CourseTitle: c.Course.Title,
			LessonID:    lesson.ID,
			LessonTitle: lesson.Title,
		}
		bestRatio = c.Progress.CompletionRatio
		found = true
	}
	return best, found
}
