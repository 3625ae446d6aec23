package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/RyzenGhost/Moodle/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []model.User) error {
	for i := range users {
		if err := m.Create(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, _ string, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && string(u.Role) != role {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Name
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByIDWithDetail(ctx context.Context, id string) (*model.Course, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) ListByIDs(_ context.Context, ids []string) ([]model.Course, error) {
	var result []model.Course
	for _, id := range ids {
		if c, ok := m.courses[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.ClassSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.ClassSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.ClassSession) error {
	if session.SessionID == "" {
		session.SessionID = fmt.Sprintf("sess-%d", len(m.sessions)+1)
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.ClassSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetByIDWithDetail(ctx context.Context, id string) (*model.ClassSession, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSessionRepo) List(_ context.Context) ([]model.ClassSession, error) {
	var result []model.ClassSession
	for _, s := range m.sessions {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSessionRepo) ListByCourseIDs(_ context.Context, courseIDs []string) ([]model.ClassSession, error) {
	var result []model.ClassSession
	for _, s := range m.sessions {
		for _, cid := range courseIDs {
			if s.CourseID == cid {
				result = append(result, *s)
				break
			}
		}
	}
	return result, nil
}

func (m *mockSessionRepo) ListByCourse(_ context.Context, courseID string) ([]model.ClassSession, error) {
	var result []model.ClassSession
	for _, s := range m.sessions {
		if s.CourseID == courseID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) Update(_ context.Context, session *model.ClassSession) error {
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment // key: userID:courseID
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment)}
}

func enrollKey(userID, courseID string) string {
	return userID + ":" + courseID
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	key := enrollKey(enrollment.UserID, enrollment.CourseID)
	if _, ok := m.enrollments[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if enrollment.EnrollmentID == "" {
		enrollment.EnrollmentID = "enroll-" + key
	}
	m.enrollments[key] = enrollment
	return nil
}

func (m *mockEnrollmentRepo) GetByUserAndCourse(_ context.Context, userID, courseID string) (*model.Enrollment, error) {
	if e, ok := m.enrollments[enrollKey(userID, courseID)]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListCourseIDsByUser(_ context.Context, userID string) ([]string, error) {
	var result []string
	for _, e := range m.enrollments {
		if e.UserID == userID {
			result = append(result, e.CourseID)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, userID, courseID string) error {
	delete(m.enrollments, enrollKey(userID, courseID))
	return nil
}

// ── Mock AttendanceRepository ──
//
// 与真实实现一致：同一 (session_id, user_id) 只允许一条记录，
// 并发插入时仅第一条成功。互斥锁模拟数据库唯一约束的原子性。

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*model.Attendance // key: sessionID:userID
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.Attendance)}
}

func attendKey(sessionID, userID string) string {
	return sessionID + ":" + userID
}

func (m *mockAttendanceRepo) Create(_ context.Context, attendance *model.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := attendKey(attendance.SessionID, attendance.UserID)
	if _, ok := m.records[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if attendance.AttendanceID == "" {
		attendance.AttendanceID = "attend-" + key
	}
	m.records[key] = attendance
	return nil
}

func (m *mockAttendanceRepo) Exists(_ context.Context, sessionID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[attendKey(sessionID, userID)]
	return ok, nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string) ([]model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Attendance
	for _, a := range m.records {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, sessionID string) ([]model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Attendance
	for _, a := range m.records {
		if a.SessionID == sessionID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListForReport(_ context.Context, _ string, _, _ *time.Time) ([]model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Attendance
	for _, a := range m.records {
		result = append(result, *a)
	}
	return result, nil
}

// setRecords 报表测试直接灌入带关联的记录
func (m *mockAttendanceRepo) setRecords(records []*model.Attendance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range records {
		key := fmt.Sprintf("%s:%s:%d", a.SessionID, a.UserID, i)
		m.records[key] = a
	}
}

// ── Mock PasswordResetRepository ──

type mockPasswordResetRepo struct {
	resets map[string]*model.PasswordReset // key: resetID
}

func newMockPasswordResetRepo() *mockPasswordResetRepo {
	return &mockPasswordResetRepo{resets: make(map[string]*model.PasswordReset)}
}

func (m *mockPasswordResetRepo) Create(_ context.Context, reset *model.PasswordReset) error {
	if reset.ResetID == "" {
		reset.ResetID = fmt.Sprintf("reset-%d", len(m.resets)+1)
	}
	m.resets[reset.ResetID] = reset
	return nil
}

func (m *mockPasswordResetRepo) GetValidByTokenHash(_ context.Context, tokenHash string) (*model.PasswordReset, error) {
	for _, r := range m.resets {
		if r.TokenHash == tokenHash && !r.Used && r.ExpiresAt.After(time.Now()) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPasswordResetRepo) InvalidateActiveByUser(_ context.Context, userID string) error {
	for _, r := range m.resets {
		if r.UserID == userID {
			r.Used = true
		}
	}
	return nil
}

func (m *mockPasswordResetRepo) MarkUsed(_ context.Context, resetID string) error {
	if r, ok := m.resets[resetID]; ok {
		r.Used = true
	}
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
