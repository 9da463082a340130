package storage

import (
	"context"

	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepo struct {
	db *gorm.DB
}

func (r *ProgressRepo) ListByUserCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) ([]models.LessonProgress, error) {
	var rows []models.LessonProgress
	if userID == 0 {
		return rows, nil
	}
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&rows).Error; err != nil {
		return nil, classify("progress.list", err)
	}
	return rows, nil
}

// Upsert keyed on (user_id, course_id, lesson_id); a repeated mark refreshes
// completed_at instead of inserting a second row.
func (r *ProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *models.LessonProgress) error {
	if err := pick(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_at"}),
		}).
		Create(row).Error; err != nil {
		return classify("progress.upsert", err)
	}
	return nil
}

// Delete removes one record. Deleting a missing record is not an error.
func (r *ProgressRepo) Delete(ctx context.Context, tx *gorm.DB, userID, courseID, lessonID uint) error {
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND lesson_id = ?", userID, courseID, lessonID).
		Delete(&models.LessonProgress{}).Error; err != nil {
		return classify("progress.delete", err)
	}
	return nil
}

func (r *ProgressRepo) DeleteByLesson(ctx context.Context, tx *gorm.DB, lessonID uint) error {
	if err := pick(r.db, tx).WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Delete(&models.LessonProgress{}).Error; err != nil {
		return classify("progress.delete_by_lesson", err)
	}
	return nil
}

func (r *ProgressRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	if err := pick(r.db, tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.LessonProgress{}).Error; err != nil {
		return classify("progress.delete_by_course", err)
	}
	return nil
}
