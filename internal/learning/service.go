// Package learning is the API the HTTP layer talks to: course progress,
// resume selection, completion toggling, lesson ordering and the admin
// catalog. Every call takes the acting user's id explicitly.
package learning

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/logger"
	"github.com/s/investorAcademy/internal/models"
	"github.com/s/investorAcademy/internal/progress"
	"github.com/s/investorAcademy/internal/storage"
)

// loadParallelism caps concurrent per-course loads for dashboards and resume.
const loadParallelism = 4

type Options struct {
	ReorderTransactional bool
	ToggleMaxAttempts    int
	ToggleRetryDelay     time.Duration
	Now                  func() time.Time
}

func DefaultOptions() Options {
	return Options{
		ReorderTransactional: true,
		ToggleMaxAttempts:    3,
		ToggleRetryDelay:     100 * time.Millisecond,
	}
}

type Service struct {
	store *storage.Store
	log   *logger.Logger
	opts  Options

	mu         sync.Mutex
	reordering map[uint]struct{}
}

func NewService(store *storage.Store, baseLog *logger.Logger, opts Options) *Service {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if opts.ToggleMaxAttempts < 1 {
		opts.ToggleMaxAttempts = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:      store,
		log:        baseLog.With("service", "learning"),
		opts:       opts,
		reordering: make(map[uint]struct{}),
	}
}

// CourseOverview is one card of the learner's dashboard.
type CourseOverview struct {
	Course       models.Course           `json:"course"`
	Progress     progress.CourseProgress `json:"progress"`
	NextLessonID uint                    `json:"next_lesson_id,omitempty"`
}

// GetCourseProgress derives totals and per-lesson status for one user and course.
func (s *Service) GetCourseProgress(ctx context.Context, courseID, userID uint) (progress.CourseProgress, error) {
	course, err := s.store.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return progress.CourseProgress{}, err
	}
	snap, err := s.snapshot(ctx, userID, *course)
	if err != nil {
		return progress.CourseProgress{}, err
	}
	return snap.Progress, nil
}

// GetResumeTarget selects the "continue learning" lesson across courseIDs,
// which are treated in the given order. Unknown course ids are skipped.
func (s *Service) GetResumeTarget(ctx context.Context, userID uint, courseIDs []uint) (progress.ResumeTarget, bool, error) {
	courses, err := s.store.Courses.GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return progress.ResumeTarget{}, false, err
	}
	snaps, err := s.loadSnapshots(ctx, userID, courses)
	if err != nil {
		return progress.ResumeTarget{}, false, err
	}
	target, ok := progress.SelectResume(snaps)
	return target, ok, nil
}

// ResumeForUser runs GetResumeTarget over the user's approved enrollments.
func (s *Service) ResumeForUser(ctx context.Context, userID uint) (progress.ResumeTarget, bool, error) {
	if userID == 0 {
		return progress.ResumeTarget{}, false, apperr.New(apperr.KindUnauthenticated, "learning.resume", errors.New("no active session"))
	}
	ids, err := s.store.Enrollments.ApprovedCourseIDs(ctx, nil, userID)
	if err != nil {
		return progress.ResumeTarget{}, false, err
	}
	return s.GetResumeTarget(ctx, userID, ids)
}

// MyCourses returns progress for every approved enrollment, in enrollment order.
func (s *Service) MyCourses(ctx context.Context, userID uint) ([]CourseOverview, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, "learning.my_courses", errors.New("no active session"))
	}
	ids, err := s.store.Enrollments.ApprovedCourseIDs(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.store.Courses.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	snaps, err := s.loadSnapshots(ctx, userID, courses)
	if err != nil {
		return nil, err
	}

	out := make([]CourseOverview, 0, len(snaps))
	for _, snap := range snaps {
		view := CourseOverview{Course: snap.Course, Progress: snap.Progress}
		if next, ok := progress.NextLesson(snap.Lessons, snap.Progress); ok {
			view.NextLessonID = next.ID
		}
		out = append(out, view)
	}
	return out, nil
}

// ToggleLessonCompletion marks the lesson complete when currentlyCompleted is
// false and unmarks it otherwise. Marking is an upsert, so repeating a mark
// never duplicates the record. Transient storage failures re-run the whole
// toggle.
func (s *Service) ToggleLessonCompletion(ctx context.Context, userID, courseID, lessonID uint, currentlyCompleted bool) error {
	if userID == 0 {
		return apperr.New(apperr.KindUnauthenticated, "learning.toggle", errors.New("no active session"))
	}

	// writes already issued finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	log := s.log.With("user_id", userID, "course_id", courseID, "lesson_id", lessonID)
	var err error
	for attempt := 1; attempt <= s.opts.ToggleMaxAttempts; attempt++ {
		err = s.toggleOnce(ctx, userID, courseID, lessonID, currentlyCompleted)
		if err == nil || !apperr.Retryable(err) {
			return err
		}
		if attempt == s.opts.ToggleMaxAttempts {
			break
		}
		log.Warn("lesson toggle failed, retrying", "attempt", attempt, "error", err)
		time.Sleep(s.opts.ToggleRetryDelay * time.Duration(attempt))
	}
	log.Error("lesson toggle gave up", "attempts", s.opts.ToggleMaxAttempts, "error", err)
	return err
}

func (s *Service) toggleOnce(ctx context.Context, userID, courseID, lessonID uint, currentlyCompleted bool) error {
	lesson, err := s.store.Lessons.GetByID(ctx, nil, lessonID)
	if err != nil {
		return err
	}
	if lesson.CourseID != courseID {
		return apperr.Newf(apperr.KindNotFound, "learning.toggle", "lesson %d is not in course %d", lessonID, courseID)
	}

	if currentlyCompleted {
		return s.store.Progress.Delete(ctx, nil, userID, courseID, lessonID)
	}
	return s.store.Progress.Upsert(ctx, nil, &models.LessonProgress{
		UserID:      userID,
		CourseID:    courseID,
		LessonID:    lessonID,
		CompletedAt: s.opts.Now().UTC(),
	})
}

func (s *Service) snapshot(ctx context.Context, userID uint, course models.Course) (progress.CourseSnapshot, error) {
	lessons, err := s.store.Lessons.ListByCourse(ctx, nil, course.ID)
	if err != nil {
		return progress.CourseSnapshot{}, err
	}
	records, err := s.store.Progress.ListByUserCourse(ctx, nil, userID, course.ID)
	if err != nil {
		return progress.CourseSnapshot{}, err
	}
	return progress.CourseSnapshot{
		Course:   course,
		Lessons:  lessons,
		Progress: progress.Aggregate(course.ID, lessons, records),
	}, nil
}

// loadSnapshots loads courses concurrently; the result keeps the input order.
func (s *Service) loadSnapshots(ctx context.Context, userID uint, courses []models.Course) ([]progress.CourseSnapshot, error) {
	out := make([]progress.CourseSnapshot, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadParallelism)
	for i, c := range courses {
		i, c := i, c
		g.Go(func() error {
			snap, err := s.snapshot(gctx, userID, c)
			if err != nil {
				return err
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
