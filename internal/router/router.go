package router

import (
	"github.com/gorilla/mux"

	"github.com/s/investorAcademy/internal/handlers"
	"github.com/s/investorAcademy/internal/handlers/admin"
	"github.com/s/investorAcademy/internal/handlers/personal"
	"github.com/s/investorAcademy/internal/middleware"
	"github.com/s/investorAcademy/internal/models"
)

// New wires every HTTP route. Admin routes need RoleAdmin; learner routes
// accept any signed-in user.
func New(h *handlers.Handler) *mux.Router {
	adminService := &admin.Service{Handler: h}
	personalService := &personal.Service{Handler: h}

	adminOnly := middleware.RequiredRole(h, models.RoleAdmin)
	signedIn := middleware.RequiredRole(h, models.RoleUser, models.RoleAdmin)

	r := mux.NewRouter()

	// --- Auth ---
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")
	r.HandleFunc("/api/me", h.HandleMe).Methods("GET")

	// --- Learner ---
	r.HandleFunc("/api/courses/{id:[0-9]+}/progress", signedIn(h.HandleCourseProgress)).Methods("GET")
	r.HandleFunc("/api/courses/{id:[0-9]+}/lessons/{lesson_id:[0-9]+}/completion", signedIn(h.HandleToggleCompletion)).Methods("PUT")
	r.HandleFunc("/api/resume", signedIn(personalService.HandleResume)).Methods("GET")
	r.HandleFunc("/api/my/courses", signedIn(personalService.HandleMyCourses)).Methods("GET")
	r.HandleFunc("/api/enroll", signedIn(personalService.HandleEnroll)).Methods("POST")

	// --- Admin: courses and lessons ---
	r.HandleFunc("/api/courses", adminOnly(adminService.HandleCoursesAPI)).Methods("GET", "POST")
	r.HandleFunc("/api/courses/{id:[0-9]+}", adminOnly(adminService.HandleCourseByIDAPI)).Methods("GET", "PUT", "DELETE")
	r.HandleFunc("/api/courses/{id:[0-9]+}/lessons", adminOnly(adminService.HandleLessonsAPI)).Methods("GET", "POST")
	r.HandleFunc("/api/courses/{id:[0-9]+}/order", adminOnly(adminService.GetOrderAPI)).Methods("GET")
	r.HandleFunc("/api/courses/{id:[0-9]+}/order/normalize", adminOnly(adminService.NormalizeOrderAPI)).Methods("POST")
	r.HandleFunc("/api/lessons/{id:[0-9]+}", adminOnly(adminService.UpdateLessonAPI)).Methods("PUT")
	r.HandleFunc("/api/lessons/{id:[0-9]+}", adminOnly(adminService.DeleteLessonAPI)).Methods("DELETE")
	r.HandleFunc("/api/lessons/{id:[0-9]+}/move", adminOnly(adminService.MoveLessonAPI)).Methods("POST")

	// --- Admin: enrollments ---
	r.HandleFunc("/api/admin/enrollments", adminOnly(adminService.GetEnrollmentsAPI)).Methods("GET")
	r.HandleFunc("/api/admin/enrollments/{id:[0-9]+}", adminOnly(adminService.UpdateEnrollmentStatusAPI)).Methods("PUT")

	return r
}
