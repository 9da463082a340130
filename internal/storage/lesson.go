package storage

import (
	"context"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
)

type LessonRepo struct {
	db *gorm.DB
}

// ListByCourse returns the course's lessons ordered by order key. id breaks
// ties so readers stay deterministic while a swap is half-written.
func (r *LessonRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := pick(r.db, tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("order_key asc").
		Order("id asc").
		Find(&lessons).Error; err != nil {
		return nil, classify("lessons.list", err)
	}
	return lessons, nil
}

func (r *LessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := pick(r.db, tx).WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, classify("lessons.get", err)
	}
	return &lesson, nil
}

// MaxOrderKey ignores sentinel (negative) keys and returns 0 for an empty course.
func (r *LessonRepo) MaxOrderKey(ctx context.Context, tx *gorm.DB, courseID uint) (int, error) {
	var max int
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ? AND order_key > 0", courseID).
		Select("COALESCE(MAX(order_key), 0)").
		Scan(&max).Error; err != nil {
		return 0, classify("lessons.max_order_key", err)
	}
	return max, nil
}

func (r *LessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if err := pick(r.db, tx).WithContext(ctx).Create(lesson).Error; err != nil {
		return classify("lessons.create", err)
	}
	return nil
}

func (r *LessonRepo) Update(ctx context.Context, tx *gorm.DB, id uint, patch map[string]interface{}) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return classify("lessons.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "lessons.update", "lesson %d", id)
	}
	return nil
}

// SetOrderKey is a single-row write; it is the only way order keys change
// after creation.
func (r *LessonRepo) SetOrderKey(ctx context.Context, tx *gorm.DB, id uint, key int) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", id).Update("order_key", key)
	if res.Error != nil {
		return classify("lessons.set_order_key", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "lessons.set_order_key", "lesson %d", id)
	}
	return nil
}

func (r *LessonRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := pick(r.db, tx).WithContext(ctx).Delete(&models.Lesson{}, id)
	if res.Error != nil {
		return classify("lessons.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "lessons.delete", "lesson %d", id)
	}
	return nil
}

func (r *LessonRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	if err := pick(r.db, tx).WithContext(ctx).Where("course_id = ?", courseID).Delete(&models.Lesson{}).Error; err != nil {
		return classify("lessons.delete_by_course", err)
	}
	return nil
}
