package learning

import (
	"context"
	"errors"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
	"github.com/s/investorAcademy/internal/storage"
)

// EnrollmentPage is one page of the admin enrollment list.
type EnrollmentPage struct {
	Data  []models.Enrollment `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Pages int                 `json:"pages"`
}

// SubmitEnrollment files a pending request for the user to join courseID.
// Only approved enrollments count toward resume and the dashboard.
func (s *Service) SubmitEnrollment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	const op = "learning.enroll"
	if userID == 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, op, errors.New("no active session"))
	}
	if _, err := s.store.Courses.GetByID(ctx, nil, courseID); err != nil {
		return nil, err
	}
	_, err := s.store.Enrollments.Find(ctx, nil, userID, courseID)
	switch {
	case err == nil:
		return nil, apperr.Newf(apperr.KindConflict, op, "user %d already requested course %d", userID, courseID)
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	e := &models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentPending}
	if err := s.store.Enrollments.Create(ctx, nil, e); err != nil {
		return nil, err
	}
	return e, nil
}

// CheckAccess reports Forbidden unless the user holds an approved enrollment
// for courseID.
func (s *Service) CheckAccess(ctx context.Context, userID, courseID uint) error {
	const op = "learning.check_access"
	if userID == 0 {
		return apperr.New(apperr.KindUnauthenticated, op, errors.New("no active session"))
	}
	e, err := s.store.Enrollments.Find(ctx, nil, userID, courseID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Newf(apperr.KindForbidden, op, "user %d is not enrolled in course %d", userID, courseID)
	}
	if err != nil {
		return err
	}
	if e.Status != models.EnrollmentApproved {
		return apperr.Newf(apperr.KindForbidden, op, "enrollment %d is %s", e.ID, e.Status)
	}
	return nil
}

func (s *Service) UpdateEnrollmentStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case models.EnrollmentPending, models.EnrollmentApproved, models.EnrollmentRejected:
	default:
		return apperr.Newf(apperr.KindInvalid, "learning.update_enrollment", "unknown status %q", status)
	}
	return s.store.Enrollments.UpdateStatus(ctx, nil, id, status)
}

func (s *Service) ListEnrollments(ctx context.Context, f storage.EnrollmentFilter) (EnrollmentPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	rows, total, err := s.store.Enrollments.List(ctx, nil, f)
	if err != nil {
		return EnrollmentPage{}, err
	}
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return EnrollmentPage{Data: rows, Total: total, Page: f.Page, Pages: pages}, nil
}
