// Package storagetest opens throwaway SQLite databases for package tests.
package storagetest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/s/investorAcademy/internal/database"
	"github.com/s/investorAcademy/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated and seeded database backed by a file in t.TempDir().
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), database.GormConfig())
	if err != nil {
		t.Fatalf("storagetest.Open() failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("storagetest.Open() failed: %v", err)
	}
	// a single connection keeps sqlite from reporting "database is locked"
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("storagetest.Open() migrate failed: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("storagetest.Open() seed failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name string, roleID uint) models.User {
	t.Helper()
	u := models.User{GoogleID: "g-" + name, Email: name + "@example.com", Name: name, RoleID: roleID}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return u
}

func CreateCourse(t *testing.T, db *gorm.DB, title string) models.Course {
	t.Helper()
	c := models.Course{Title: title}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// CreateLessons inserts one lesson per title with keys 1..n.
func CreateLessons(t *testing.T, db *gorm.DB, courseID uint, titles ...string) []models.Lesson {
	t.Helper()
	out := make([]models.Lesson, 0, len(titles))
	for i, title := range titles {
		l := models.Lesson{CourseID: courseID, Title: title, OrderKey: i + 1}
		if err := db.Create(&l).Error; err != nil {
			t.Fatalf("CreateLessons() failed: %v", err)
		}
		out = append(out, l)
	}
	return out
}

func MarkDone(t *testing.T, db *gorm.DB, userID uint, lesson models.Lesson) {
	t.Helper()
	row := models.LessonProgress{UserID: userID, CourseID: lesson.CourseID, LessonID: lesson.ID, CompletedAt: time.Now().UTC()}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("MarkDone() failed: %v", err)
	}
}

// OrderKeys maps lesson id to its stored order key.
func OrderKeys(t *testing.T, db *gorm.DB, courseID uint) map[uint]int {
	t.Helper()
	var lessons []models.Lesson
	if err := db.Where("course_id = ?", courseID).Find(&lessons).Error; err != nil {
		t.Fatalf("OrderKeys() failed: %v", err)
	}
	out := make(map[uint]int, len(lessons))
	for _, l := range lessons {
		out[l.ID] = l.OrderKey
	}
	return out
}
