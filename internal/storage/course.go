package storage

import (
	"context"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
)

type CourseRepo struct {
	db *gorm.DB
}

func (r *CourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := pick(r.db, tx).WithContext(ctx).Create(course).Error; err != nil {
		return classify("courses.create", err)
	}
	return nil
}

func (r *CourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := pick(r.db, tx).WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, classify("courses.get", err)
	}
	return &course, nil
}

// GetByIDs returns courses in the order of ids; unknown ids are skipped.
func (r *CourseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	var rows []models.Course
	if err := pick(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, classify("courses.get_many", err)
	}
	byID := make(map[uint]models.Course, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	out := make([]models.Course, 0, len(rows))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// List returns courses newest first. authorID == 0 lists all courses.
func (r *CourseRepo) List(ctx context.Context, tx *gorm.DB, authorID uint) ([]models.Course, error) {
	q := pick(r.db, tx).WithContext(ctx)
	if authorID != 0 {
		q = q.Where("author_id = ?", authorID)
	}
	var courses []models.Course
	if err := q.Order("created_at desc").Order("id desc").Find(&courses).Error; err != nil {
		return nil, classify("courses.list", err)
	}
	return courses, nil
}

func (r *CourseRepo) Update(ctx context.Context, tx *gorm.DB, id uint, patch map[string]interface{}) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return classify("courses.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "courses.update", "course %d", id)
	}
	return nil
}

func (r *CourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := pick(r.db, tx).WithContext(ctx).Delete(&models.Course{}, id)
	if res.Error != nil {
		return classify("courses.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "courses.delete", "course %d", id)
	}
	return nil
}
