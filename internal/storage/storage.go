package storage

import (
	"context"
	"errors"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/logger"
	"gorm.io/gorm"
)

// Store bundles the repositories over one gorm handle. Every repository method
// takes an optional tx; nil means "use the base connection".
type Store struct {
	db  *gorm.DB
	log *logger.Logger

	Users       *UserRepo
	Courses     *CourseRepo
	Lessons     *LessonRepo
	Progress    *ProgressRepo
	Enrollments *EnrollmentRepo
	Logs        *LogRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Store{
		db:          db,
		log:         baseLog.With("component", "storage"),
		Users:       &UserRepo{db: db},
		Courses:     &CourseRepo{db: db},
		Lessons:     &LessonRepo{db: db},
		Progress:    &ProgressRepo{db: db},
		Enrollments: &EnrollmentRepo{db: db},
		Logs:        &LogRepo{db: db},
	}
}

// Transaction runs fn inside a database transaction. The error returned by fn
// is passed through unchanged; commit failures are classified.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		s.log.Warn("transaction failed", "error", err)
		return classify("storage.transaction", err)
	}
	return nil
}

func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// classify maps gorm/driver errors onto the application taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.KindNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.New(apperr.KindConflict, op, err)
	default:
		return apperr.New(apperr.KindTransientIO, op, err)
	}
}
