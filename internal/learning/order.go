package learning

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
)

type DuplicateKey struct {
	Key       int    `json:"key"`
	LessonIDs []uint `json:"lesson_ids"`
}

// OrderReport describes a course's stored lesson order. A course left behind
// by an interrupted reorder shows a sentinel or a duplicate key here.
type OrderReport struct {
	CourseID   uint            `json:"course_id"`
	Lessons    []models.Lesson `json:"lessons"`
	Sentinels  []uint          `json:"sentinels"`
	Duplicates []DuplicateKey  `json:"duplicates"`
	Healthy    bool            `json:"healthy"`
}

func (s *Service) InspectOrder(ctx context.Context, courseID uint) (OrderReport, error) {
	lessons, err := s.ListLessons(ctx, courseID)
	if err != nil {
		return OrderReport{}, err
	}
	return inspect(courseID, lessons), nil
}

func inspect(courseID uint, lessons []models.Lesson) OrderReport {
	rep := OrderReport{
		CourseID:   courseID,
		Lessons:    lessons,
		Sentinels:  []uint{},
		Duplicates: []DuplicateKey{},
	}
	byKey := map[int][]uint{}
	for _, l := range lessons {
		if l.OrderKey < 1 {
			rep.Sentinels = append(rep.Sentinels, l.ID)
			continue
		}
		byKey[l.OrderKey] = append(byKey[l.OrderKey], l.ID)
	}
	for key, ids := range byKey {
		if len(ids) > 1 {
			rep.Duplicates = append(rep.Duplicates, DuplicateKey{Key: key, LessonIDs: ids})
		}
	}
	sort.Slice(rep.Duplicates, func(i, j int) bool { return rep.Duplicates[i].Key < rep.Duplicates[j].Key })
	rep.Healthy = len(rep.Sentinels) == 0 && len(rep.Duplicates) == 0
	return rep
}

// NormalizeOrder renumbers a course's lessons to 1..n, keeping the stored
// order and putting lessons that hold a sentinel key last. It is the repair
// path after a reorder failed half way.
func (s *Service) NormalizeOrder(ctx context.Context, actorID, courseID uint) ([]models.Lesson, error) {
	const op = "learning.normalize_order"
	if actorID == 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, op, errors.New("no active session"))
	}
	if _, err := s.store.Courses.GetByID(ctx, nil, courseID); err != nil {
		return nil, err
	}
	if !s.beginCourseWrite(courseID) {
		return nil, apperr.Newf(apperr.KindBusy, op, "course %d is already being reordered", courseID)
	}
	defer s.endCourseWrite(courseID)

	ctx = context.WithoutCancel(ctx)
	var (
		out    []models.Lesson
		before OrderReport
	)
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		lessons, err := s.store.Lessons.ListByCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		before = inspect(courseID, lessons)

		ordered := make([]models.Lesson, 0, len(lessons))
		var parked []models.Lesson
		minKey := 0
		for _, l := range lessons {
			if l.OrderKey < minKey {
				minKey = l.OrderKey
			}
			if l.OrderKey < 1 {
				parked = append(parked, l)
				continue
			}
			ordered = append(ordered, l)
		}
		ordered = append(ordered, parked...)

		// first move every lesson below all current keys, then onto 1..n, so
		// no intermediate write collides with a key still in use
		base := minKey - 1 - len(ordered)
		for i, l := range ordered {
			if err := s.store.Lessons.SetOrderKey(ctx, tx, l.ID, base-i); err != nil {
				return err
			}
		}
		for i := range ordered {
			ordered[i].OrderKey = i + 1
			if err := s.store.Lessons.SetOrderKey(ctx, tx, ordered[i].ID, i+1); err != nil {
				return err
			}
		}
		out = ordered
		return nil
	})
	if err != nil {
		s.log.Error("normalize order failed", "course_id", courseID, "error", err)
		return nil, err
	}

	details := map[string]interface{}{
		"course_id":  courseID,
		"sentinels":  before.Sentinels,
		"duplicates": before.Duplicates,
		"lessons":    len(out),
	}
	if err := s.store.Logs.Record(ctx, nil, actorID, models.ActionOrderNormalized, details); err != nil {
		s.log.Error("could not record order normalization", "course_id", courseID, "error", err)
	}
	return out, nil
}
