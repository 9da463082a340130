package learning

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
)

type CourseInput struct {
	Title       string
	Description string
	IsPublished bool
}

type LessonInput struct {
	Title    string
	VideoURL string
	Notes    string
}

func (s *Service) CreateCourse(ctx context.Context, authorID uint, in CourseInput) (*models.Course, error) {
	if authorID == 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, "learning.create_course", errors.New("no active session"))
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Newf(apperr.KindInvalid, "learning.create_course", "title is required")
	}
	course := &models.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		IsPublished: in.IsPublished,
		AuthorID:    authorID,
	}
	if err := s.store.Courses.Create(ctx, nil, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id uint, in CourseInput) (*models.Course, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Newf(apperr.KindInvalid, "learning.update_course", "title is required")
	}
	patch := map[string]interface{}{
		"title":        strings.TrimSpace(in.Title),
		"description":  in.Description,
		"is_published": in.IsPublished,
	}
	if err := s.store.Courses.Update(ctx, nil, id, patch); err != nil {
		return nil, err
	}
	return s.store.Courses.GetByID(ctx, nil, id)
}

// GetCourse returns the course with its lessons in order.
func (s *Service) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.store.Courses.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.store.Lessons.ListByCourse(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons
	return course, nil
}

func (s *Service) ListCourses(ctx context.Context, authorID uint) ([]models.Course, error) {
	return s.store.Courses.List(ctx, nil, authorID)
}

// DeleteCourse removes the course together with its progress records,
// lessons and enrollments.
func (s *Service) DeleteCourse(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.store.Courses.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.store.Progress.DeleteByCourse(ctx, tx, id); err != nil {
			return err
		}
		if err := s.store.Lessons.DeleteByCourse(ctx, tx, id); err != nil {
			return err
		}
		if err := s.store.Enrollments.DeleteByCourse(ctx, tx, id); err != nil {
			return err
		}
		return s.store.Courses.Delete(ctx, tx, id)
	})
}

func (s *Service) ListLessons(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	if _, err := s.store.Courses.GetByID(ctx, nil, courseID); err != nil {
		return nil, err
	}
	return s.store.Lessons.ListByCourse(ctx, nil, courseID)
}

// CreateLesson appends a lesson: its order key is one past the course's
// highest key, or 1 for an empty course.
func (s *Service) CreateLesson(ctx context.Context, courseID uint, in LessonInput) (*models.Lesson, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Newf(apperr.KindInvalid, "learning.create_lesson", "title is required")
	}
	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    strings.TrimSpace(in.Title),
		VideoURL: in.VideoURL,
		Notes:    in.Notes,
	}
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.store.Courses.GetByID(ctx, tx, courseID); err != nil {
			return err
		}
		max, err := s.store.Lessons.MaxOrderKey(ctx, tx, courseID)
		if err != nil {
			return err
		}
		lesson.OrderKey = max + 1
		return s.store.Lessons.Create(ctx, tx, lesson)
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// UpdateLesson edits content fields only. Order keys change through
// ReorderLesson and NormalizeOrder.
func (s *Service) UpdateLesson(ctx context.Context, id uint, in LessonInput) (*models.Lesson, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Newf(apperr.KindInvalid, "learning.update_lesson", "title is required")
	}
	patch := map[string]interface{}{
		"title":     strings.TrimSpace(in.Title),
		"video_url": in.VideoURL,
		"notes":     in.Notes,
	}
	if err := s.store.Lessons.Update(ctx, nil, id, patch); err != nil {
		return nil, err
	}
	return s.store.Lessons.GetByID(ctx, nil, id)
}

// DeleteLesson removes the lesson's progress records first so no record is
// left pointing at a missing lesson. Remaining lessons keep their keys.
func (s *Service) DeleteLesson(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.store.Lessons.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.store.Progress.DeleteByLesson(ctx, tx, id); err != nil {
			return err
		}
		return s.store.Lessons.Delete(ctx, tx, id)
	})
}
