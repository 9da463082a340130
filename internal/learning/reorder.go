package learning

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/logger"
	"github.com/s/investorAcademy/internal/models"
	"github.com/s/investorAcademy/internal/reorder"
)

// ReorderLesson moves lessonID one position up or down inside its course and
// returns the course's lessons in their new order. Moves past either end, or
// in a course with fewer than two lessons, return the current order without
// writing anything.
func (s *Service) ReorderLesson(ctx context.Context, actorID, courseID, lessonID uint, dir reorder.Direction) ([]models.Lesson, error) {
	const op = "learning.reorder"
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

	// a caller that goes away must not strand the swap between two writes
	ctx = context.WithoutCancel(ctx)
	log := s.log.With("actor_id", actorID, "course_id", courseID, "lesson_id", lessonID, "direction", dir)

	move := func(tx *gorm.DB) ([]models.Lesson, error) {
		lessons, err := s.store.Lessons.ListByCourse(ctx, tx, courseID)
		if err != nil {
			return nil, err
		}
		plan, ok, err := reorder.PlanMove(lessons, lessonID, dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			return lessons, nil
		}
		return s.newSwap(tx, log).Run(ctx, lessons, plan)
	}

	if !s.opts.ReorderTransactional {
		out, err := move(nil)
		if err != nil {
			if apperr.Is(err, apperr.KindWriteConflict) {
				log.Error("lesson reorder left the course partially written", "error", err)
				s.recordReorderFailure(ctx, actorID, courseID, err)
			}
			return nil, err
		}
		return out, nil
	}

	var out []models.Lesson
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var moveErr error
		out, moveErr = move(tx)
		return moveErr
	})
	if err != nil {
		var rerr *reorder.Error
		if errors.As(err, &rerr) {
			rerr.RolledBack = true
			log.Warn("lesson reorder rolled back", "state", rerr.State, "error", rerr.Err)
			return nil, apperr.New(rerr.CauseKind(), op, rerr)
		}
		return nil, err
	}
	log.Debug("lesson reordered", "order", describeLessons(out))
	return out, nil
}

func (s *Service) newSwap(tx *gorm.DB, log *logger.Logger) *reorder.Swap {
	swap := reorder.NewSwap(reorder.KeyWriterFunc(func(ctx context.Context, lessonID uint, key int) error {
		return s.store.Lessons.SetOrderKey(ctx, tx, lessonID, key)
	}))
	swap.OnTransition = func(from, to reorder.State) {
		log.Debug("reorder transition", "from", from, "to", to)
	}
	return swap
}

// recordReorderFailure leaves an audit entry so an administrator can find and
// repair the course. Failing to write it is only logged.
func (s *Service) recordReorderFailure(ctx context.Context, actorID, courseID uint, cause error) {
	details := map[string]interface{}{
		"course_id": courseID,
		"error":     cause.Error(),
	}
	var rerr *reorder.Error
	if errors.As(cause, &rerr) {
		details["state"] = rerr.State
		details["lesson_id"] = rerr.LessonID
		details["key"] = rerr.Key
	}
	if err := s.store.Logs.Record(ctx, nil, actorID, models.ActionLessonReorderFailed, details); err != nil {
		s.log.Error("could not record reorder failure", "course_id", courseID, "error", err)
	}
}

// beginCourseWrite reserves courseID for one order-changing operation in this
// process. It does not coordinate with other processes.
func (s *Service) beginCourseWrite(courseID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.reordering[courseID]; busy {
		return false
	}
	s.reordering[courseID] = struct{}{}
	return true
}

func (s *Service) endCourseWrite(courseID uint) {
	s.mu.Lock()
	delete(s.reordering, courseID)
	s.mu.Unlock()
}

func describeLessons(lessons []models.Lesson) string {
	out := ""
	for i, l := range lessons {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d@%d", l.ID, l.OrderKey)
	}
	return out
}
