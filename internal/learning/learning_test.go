package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
	"github.com/s/investorAcademy/internal/progress"
	"github.com/s/investorAcademy/internal/storage"
	"github.com/s/investorAcademy/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected failure")

func newTestService(t *testing.T, opts Options) (*Service, *gorm.DB) {
	t.Helper()
	db := storagetest.Open(t)
	if opts.ToggleMaxAttempts == 0 {
		opts.ToggleMaxAttempts = 3
	}
	return NewService(storage.New(db, nil), nil, opts), db
}

// countLessonUpdates counts UPDATEs against the lessons table and fails the
// failAt-th one (0 never fails).
func countLessonUpdates(t *testing.T, db *gorm.DB, failAt int) *int {
	t.Helper()
	n := new(int)
	err := db.Callback().Update().Before("gorm:update").Register("test:lesson_updates", func(tx *gorm.DB) {
		if tx.Statement.Table != "lessons" {
			return
		}
		*n++
		if *n == failAt {
			_ = tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)
	return n
}

func lessonTitles(lessons []models.Lesson) []string {
	out := make([]string, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, l.Title)
	}
	return out
}

func TestGetCourseProgressScenario(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A", "B", "C")
	storagetest.MarkDone(t, db, user.ID, lessons[0])

	p, err := svc.GetCourseProgress(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalLessons)
	assert.Equal(t, 1, p.CompletedCount)
	assert.InDelta(t, 1.0/3.0, p.CompletionRatio, 1e-9)
	assert.Equal(t, progress.StatusCompleted, p.StatusOf(lessons[0].ID))
	assert.Equal(t, progress.StatusInProgress, p.StatusOf(lessons[1].ID))
	assert.Equal(t, progress.StatusNotStarted, p.StatusOf(lessons[2].ID))

	// another user sees nothing done
	other := storagetest.CreateUser(t, db, "bob", models.RoleUser)
	p, err = svc.GetCourseProgress(ctx, course.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CompletedCount)
}

func TestGetCourseProgressEmptyAndMissing(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	course := storagetest.CreateCourse(t, db, "Empty")

	p, err := svc.GetCourseProgress(ctx, course.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalLessons)
	assert.Equal(t, 0.0, p.CompletionRatio)
	assert.Empty(t, p.Lessons)

	_, err = svc.GetCourseProgress(ctx, course.ID+100, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetResumeTargetPicksLeastAdvancedCourse(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)

	half := storagetest.CreateCourse(t, db, "Half")
	halfLessons := storagetest.CreateLessons(t, db, half.ID, "h1", "h2")
	storagetest.MarkDone(t, db, user.ID, halfLessons[0])

	fifth := storagetest.CreateCourse(t, db, "Fifth")
	fifthLessons := storagetest.CreateLessons(t, db, fifth.ID, "f1", "f2", "f3", "f4", "f5")
	storagetest.MarkDone(t, db, user.ID, fifthLessons[0])

	empty := storagetest.CreateCourse(t, db, "Empty")

	target, ok, err := svc.GetResumeTarget(ctx, user.ID, []uint{empty.ID, half.ID, fifth.ID})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, progress.ResumeTarget{
		CourseID:    fifth.ID,
		CourseTitle: "Fifth",
		LessonID:    fifthLessons[1].ID,
		LessonTitle: "f2",
	}, target)
}

func TestGetResumeTargetNone(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	empty := storagetest.CreateCourse(t, db, "Empty")

	_, ok, err := svc.GetResumeTarget(ctx, 1, []uint{empty.ID, 999})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.GetResumeTarget(ctx, 1, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResumeForUserUsesApprovedEnrollments(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)

	first := storagetest.CreateCourse(t, db, "First")
	storagetest.CreateLessons(t, db, first.ID, "a1")
	second := storagetest.CreateCourse(t, db, "Second")
	secondLessons := storagetest.CreateLessons(t, db, second.ID, "b1")

	pending, err := svc.SubmitEnrollment(ctx, user.ID, first.ID)
	require.NoError(t, err)
	approved, err := svc.SubmitEnrollment(ctx, user.ID, second.ID)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateEnrollmentStatus(ctx, approved.ID, models.EnrollmentApproved))

	target, ok, err := svc.ResumeForUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secondLessons[0].ID, target.LessonID)

	require.NoError(t, svc.UpdateEnrollmentStatus(ctx, pending.ID, models.EnrollmentApproved))
	// equal ratios: the earlier enrollment wins
	target, ok, err = svc.ResumeForUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, target.CourseID)

	_, _, err = svc.ResumeForUser(ctx, 0)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestMyCourses(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)

	var courseIDs []uint
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		c := storagetest.CreateCourse(t, db, title)
		lessons := storagetest.CreateLessons(t, db, c.ID, title+"-1", title+"-2")
		storagetest.MarkDone(t, db, user.ID, lessons[0])
		e, err := svc.SubmitEnrollment(ctx, user.ID, c.ID)
		require.NoError(t, err)
		require.NoError(t, svc.UpdateEnrollmentStatus(ctx, e.ID, models.EnrollmentApproved))
		courseIDs = append(courseIDs, c.ID)
	}

	views, err := svc.MyCourses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, views, len(courseIDs))
	for i, v := range views {
		assert.Equal(t, courseIDs[i], v.Course.ID)
		assert.Equal(t, 50, v.Progress.Percent)
		assert.NotZero(t, v.NextLessonID)
	}

	_, err = svc.MyCourses(ctx, 0)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestToggleLessonCompletion(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A", "B", "C")

	require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[1].ID, false))
	p, err := svc.GetCourseProgress(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCompleted, p.StatusOf(lessons[1].ID))

	// marking again is an upsert
	require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[1].ID, false))
	var count int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[1].ID, true))
	p, err = svc.GetCourseProgress(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusNotStarted, p.StatusOf(lessons[1].ID))
	assert.Equal(t, 0, p.CompletedCount)
}

func TestToggleUnmarkKeepsEarlierProgress(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A", "B")
	storagetest.MarkDone(t, db, user.ID, lessons[0])
	storagetest.MarkDone(t, db, user.ID, lessons[1])

	require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[1].ID, true))
	p, err := svc.GetCourseProgress(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, p.StatusOf(lessons[1].ID))
}

func TestToggleTwiceFromSameStartingStatus(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A")

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[0].ID, false))
	}
	p, err := svc.GetCourseProgress(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedCount)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[0].ID, true))
	}
	p, err = svc.GetCourseProgress(ctx, course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CompletedCount)
}

func TestToggleErrors(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	other := storagetest.CreateCourse(t, db, "Stocks")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A")

	err := svc.ToggleLessonCompletion(ctx, 0, course.ID, lessons[0].ID, false)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	var count int64
	require.NoError(t, db.Model(&models.LessonProgress{}).Count(&count).Error)
	assert.Zero(t, count)

	err = svc.ToggleLessonCompletion(ctx, user.ID, course.ID, 999, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.ToggleLessonCompletion(ctx, user.ID, other.ID, lessons[0].ID, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestToggleRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, Options{ToggleMaxAttempts: 3, Now: func() time.Time { return fixed }})
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A")

	creates := 0
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:flaky_progress", func(tx *gorm.DB) {
		if tx.Statement.Table != "lesson_progress" {
			return
		}
		creates++
		if creates == 1 {
			_ = tx.AddError(errInjected)
		}
	}))

	require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[0].ID, false))
	assert.Equal(t, 2, creates)

	var row models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).First(&row).Error)
	assert.True(t, fixed.Equal(row.CompletedAt))
}

func TestToggleGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t, Options{ToggleMaxAttempts: 2})
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A")

	deletes := 0
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:broken_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "lesson_progress" {
			deletes++
			_ = tx.AddError(errInjected)
		}
	}))

	err := svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[0].ID, true)
	assert.True(t, apperr.Is(err, apperr.KindTransientIO))
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, 2, deletes)
}

func TestToggleIgnoresCallerCancellation(t *testing.T) {
	svc, db := newTestService(t, DefaultOptions())
	user := storagetest.CreateUser(t, db, "ann", models.RoleUser)
	course := storagetest.CreateCourse(t, db, "Bonds")
	lessons := storagetest.CreateLessons(t, db, course.ID, "A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.ToggleLessonCompletion(ctx, user.ID, course.ID, lessons[0].ID, false))

	p, err := svc.GetCourseProgress(context.Background(), course.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedCount)
}

func TestServiceDefaults(t *testing.T) {
	svc := NewService(storage.New(storagetest.Open(t), nil), nil, Options{})
	assert.Equal(t, 1, svc.opts.ToggleMaxAttempts)
	assert.NotNil(t, svc.opts.Now)
	assert.True(t, DefaultOptions().ReorderTransactional)
}
