package storage

import (
	"context"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
	"gorm.io/gorm"
)

type EnrollmentRepo struct {
	db *gorm.DB
}

type EnrollmentFilter struct {
	CourseID uint
	Status   string
	Page     int
	Limit    int
}

func (r *EnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, e *models.Enrollment) error {
	if err := pick(r.db, tx).WithContext(ctx).Create(e).Error; err != nil {
		return classify("enrollments.create", err)
	}
	return nil
}

func (r *EnrollmentRepo) Find(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error; err != nil {
		return nil, classify("enrollments.find", err)
	}
	return &e, nil
}

// ApprovedCourseIDs returns the user's approved course ids in enrollment order.
func (r *EnrollmentRepo) ApprovedCourseIDs(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	if err := pick(r.db, tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND status = ?", userID, models.EnrollmentApproved).
		Order("created_at asc").
		Order("id asc").
		Pluck("course_id", &ids).Error; err != nil {
		return nil, classify("enrollments.approved", err)
	}
	return ids, nil
}

// List returns a page of enrollments (newest first) and the total before paging.
func (r *EnrollmentRepo) List(ctx context.Context, tx *gorm.DB, f EnrollmentFilter) ([]models.Enrollment, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	filtered := func() *gorm.DB {
		q := pick(r.db, tx).WithContext(ctx).Model(&models.Enrollment{})
		if f.CourseID != 0 {
			q = q.Where("course_id = ?", f.CourseID)
		}
		if f.Status != "" && f.Status != "all" {
			q = q.Where("status = ?", f.Status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, classify("enrollments.count", err)
	}

	var rows []models.Enrollment
	if err := filtered().Preload("User").Preload("Course").
		Order("created_at desc").
		Order("id desc").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, classify("enrollments.list", err)
	}
	return rows, total, nil
}

func (r *EnrollmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return classify("enrollments.update_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.KindNotFound, "enrollments.update_status", "enrollment %d", id)
	}
	return nil
}

func (r *EnrollmentRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	if err := pick(r.db, tx).WithContext(ctx).Unscoped().
		Where("course_id = ?", courseID).
		Delete(&models.Enrollment{}).Error; err != nil {
		return classify("enrollments.delete_by_course", err)
	}
	return nil
}
