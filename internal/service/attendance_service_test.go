package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/RyzenGhost/Moodle/config"
	"github.com/RyzenGhost/Moodle/internal/dto"
	"github.com/RyzenGhost/Moodle/internal/model"
	"github.com/RyzenGhost/Moodle/internal/repository"
	"github.com/RyzenGhost/Moodle/pkg/qrtoken"
)

// ── 测试脚手架 ──
//
// 固定场次：2025-08-16 09:30 ~ 13:00 UTC，宽限 15 分钟，
// 即有效签到窗为 [09:15:00, 13:15:00] 闭区间。

var (
	sessStart = time.Date(2025, 8, 16, 9, 30, 0, 0, time.UTC)
	sessEnd   = time.Date(2025, 8, 16, 13, 0, 0, 0, time.UTC)
)

type attendanceFixture struct {
	svc        *attendanceService
	codec      *qrtoken.Codec
	users      *mockUserRepo
	enrollment *mockEnrollmentRepo
	attendance *mockAttendanceRepo
	clock      time.Time
	mu         sync.Mutex
}

// setClock 推进测试时钟（服务与二维码编解码器共用）
func (f *attendanceFixture) setClock(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = t
}

func (f *attendanceFixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func setupAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			FrontendURL: "http://localhost:5173",
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-key-for-unit-testing-2026",
		},
		Attendance: config.AttendanceConfig{
			GraceMinutes: 15,
			QRTokenTTL:   5 * time.Minute,
		},
	}

	f := &attendanceFixture{
		users:      newMockUserRepo(),
		enrollment: newMockEnrollmentRepo(),
		attendance: newMockAttendanceRepo(),
		clock:      sessStart, // 默认时钟落在窗口内
	}
	f.codec = qrtoken.NewCodec(&cfg.Auth, cfg.Attendance.QRTokenTTL).WithNowFunc(f.now)

	courseRepo := newMockCourseRepo()
	course := &model.Course{CourseID: "course-1", Name: "分布式系统"}
	_ = courseRepo.Create(context.Background(), course)

	sessionRepo := newMockSessionRepo()
	_ = sessionRepo.Create(context.Background(), &model.ClassSession{
		SessionID:   "sess-1",
		CourseID:    "course-1",
		SessionDate: time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC),
		StartAt:     sessStart,
		EndAt:       sessEnd,
	})

	// 学生 A 已选课，学生 B 未选，教师 T 未选
	for _, u := range []*model.User{
		{UserID: "student-a", FullName: "学生A", Email: "a@test.com", Role: model.RoleStudent},
		{UserID: "student-b", FullName: "学生B", Email: "b@test.com", Role: model.RoleStudent},
		{UserID: "student-c", FullName: "学生C", Email: "c@test.com", Role: model.RoleStudent},
		{UserID: "teacher-t", FullName: "教师T", Email: "t@test.com", Role: model.RoleTeacher},
	} {
		f.users.users[u.UserID] = u
	}
	_ = f.enrollment.Create(context.Background(), &model.Enrollment{UserID: "student-a", CourseID: "course-1"})
	_ = f.enrollment.Create(context.Background(), &model.Enrollment{UserID: "student-c", CourseID: "course-1"})

	repo := &repository.Repository{
		User:       f.users,
		Course:     courseRepo,
		Session:    sessionRepo,
		Enrollment: f.enrollment,
		Attendance: f.attendance,
	}

	svc := NewAttendanceService(cfg, repo, f.codec, zap.NewNop()).(*attendanceService)
	svc.now = f.now
	f.svc = svc
	return f
}

// ── 时间窗策略 ──

func TestWithinWindow_Boundaries(t *testing.T) {
	f := setupAttendanceFixture(t)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"开始前15分整（窗口起点，含）", sessStart.Add(-15 * time.Minute), true},
		{"开始前15分零1秒", sessStart.Add(-15*time.Minute - time.Second), false},
		{"结束后15分整（窗口终点，含）", sessEnd.Add(15 * time.Minute), true},
		{"结束后15分零1秒", sessEnd.Add(15*time.Minute + time.Second), false},
		{"课程进行中", sessStart.Add(time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.withinWindow(tc.now, sessStart, sessEnd)
			if err != nil {
				t.Fatalf("withinWindow 返回错误: %v", err)
			}
			if got != tc.want {
				t.Errorf("期望 %v，实际=%v", tc.want, got)
			}
		})
	}
}

func TestWithinWindow_DisableOverride(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.svc.cfg.Attendance.DisableWindow = true

	// 远在窗口外也放行
	got, err := f.svc.withinWindow(sessEnd.Add(48*time.Hour), sessStart, sessEnd)
	if err != nil {
		t.Fatalf("withinWindow 返回错误: %v", err)
	}
	if !got {
		t.Error("disable_window 开启时应始终放行")
	}
}

func TestWithinWindow_ZeroTimes(t *testing.T) {
	f := setupAttendanceFixture(t)

	_, err := f.svc.withinWindow(sessStart, time.Time{}, sessEnd)
	if !errors.Is(err, ErrInvalidSessionTime) {
		t.Errorf("场次时间缺失应返回 ErrInvalidSessionTime，实际: %v", err)
	}
}

// ── MintQRToken ──

func TestMintQRToken_Success(t *testing.T) {
	f := setupAttendanceFixture(t)
	// 签发不受时间窗限制：09:00 在窗口开启前
	f.setClock(sessStart.Add(-30 * time.Minute))

	resp, err := f.svc.MintQRToken(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("MintQRToken 应成功: %v", err)
	}
	if resp.Token == "" {
		t.Error("Token 不应为空")
	}
	if !strings.Contains(resp.URL, "/qr-checkin?t=") {
		t.Errorf("URL 应包含签到落地页路径，实际=%s", resp.URL)
	}
	if resp.ExpiresIn != 300 {
		t.Errorf("期望 ExpiresIn=300，实际=%d", resp.ExpiresIn)
	}

	// 签出的 Token 能解回同一场次
	sessionID, err := f.codec.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if sessionID != "sess-1" {
		t.Errorf("期望 session_id=sess-1，实际=%s", sessionID)
	}
}

func TestMintQRToken_SessionNotFound(t *testing.T) {
	f := setupAttendanceFixture(t)

	_, err := f.svc.MintQRToken(context.Background(), "no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

// ── QRCheckin ──

func TestQRCheckin_Success(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart.Add(-10 * time.Minute)) // 09:20，窗口内

	token, _ := f.codec.Mint("sess-1")
	resp, err := f.svc.QRCheckin(context.Background(), token, "student-a", model.RoleStudent)
	if err != nil {
		t.Fatalf("QRCheckin 应成功: %v", err)
	}
	if resp.SessionID != "sess-1" || resp.UserID != "student-a" {
		t.Errorf("记录归属错误: session=%s user=%s", resp.SessionID, resp.UserID)
	}
	if resp.Status != model.AttendanceStatusPresent {
		t.Errorf("期望状态 present，实际=%s", resp.Status)
	}
}

func TestQRCheckin_InvalidToken(t *testing.T) {
	f := setupAttendanceFixture(t)

	_, err := f.svc.QRCheckin(context.Background(), "not-a-jwt", "student-a", model.RoleStudent)
	if !errors.Is(err, ErrQRTokenInvalid) {
		t.Errorf("期望 ErrQRTokenInvalid，实际: %v", err)
	}
}

func TestQRCheckin_ExpiredToken(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	token, _ := f.codec.Mint("sess-1")
	// 6 分钟后（TTL 5 分钟）兑换
	f.setClock(sessStart.Add(6 * time.Minute))

	_, err := f.svc.QRCheckin(context.Background(), token, "student-a", model.RoleStudent)
	if !errors.Is(err, ErrQRTokenInvalid) {
		t.Errorf("过期 Token 期望 ErrQRTokenInvalid，实际: %v", err)
	}
}

func TestQRCheckin_Duplicate(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart.Add(-10 * time.Minute))

	token, _ := f.codec.Mint("sess-1")
	if _, err := f.svc.QRCheckin(context.Background(), token, "student-a", model.RoleStudent); err != nil {
		t.Fatalf("首次签到应成功: %v", err)
	}

	// 重新签发的 Token 也挡不住重复：幂等键是 (场次, 用户)
	f.setClock(sessStart.Add(-5 * time.Minute))
	fresh, _ := f.codec.Mint("sess-1")
	_, err := f.svc.QRCheckin(context.Background(), fresh, "student-a", model.RoleStudent)
	if !errors.Is(err, ErrDuplicateAttendance) {
		t.Errorf("期望 ErrDuplicateAttendance，实际: %v", err)
	}
}

func TestQRCheckin_NotEnrolled(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart.Add(-10 * time.Minute))

	token, _ := f.codec.Mint("sess-1")
	_, err := f.svc.QRCheckin(context.Background(), token, "student-b", model.RoleStudent)
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("未选课学生期望 ErrNotEnrolled，实际: %v", err)
	}

	// 被拒后不应留下任何台账记录
	exists, _ := f.attendance.Exists(context.Background(), "sess-1", "student-b")
	if exists {
		t.Error("被拒签到不应写入台账")
	}
}

func TestQRCheckin_OutsideWindow(t *testing.T) {
	f := setupAttendanceFixture(t)
	// 13:15:01，刚过窗口终点
	f.setClock(sessEnd.Add(15*time.Minute + time.Second))

	token, _ := f.codec.Mint("sess-1")
	_, err := f.svc.QRCheckin(context.Background(), token, "student-a", model.RoleStudent)
	if !errors.Is(err, ErrOutsideWindow) {
		t.Errorf("期望 ErrOutsideWindow，实际: %v", err)
	}
}

func TestQRCheckin_StaffSelfWithoutEnrollment(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	token, _ := f.codec.Mint("sess-1")
	resp, err := f.svc.QRCheckin(context.Background(), token, "teacher-t", model.RoleTeacher)
	if err != nil {
		t.Fatalf("教师未选课也应能为本人签到: %v", err)
	}
	if resp.UserID != "teacher-t" {
		t.Errorf("期望记录教师本人，实际=%s", resp.UserID)
	}
}

// ── ManualCheckin ──

func TestManualCheckin_DefaultsToCaller(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	resp, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
	}, "student-a", model.RoleStudent)
	if err != nil {
		t.Fatalf("ManualCheckin 应成功: %v", err)
	}
	if resp.UserID != "student-a" {
		t.Errorf("未指定目标时应记录调用者本人，实际=%s", resp.UserID)
	}
}

func TestManualCheckin_BackfillWithExplicitTime(t *testing.T) {
	f := setupAttendanceFixture(t)
	// 下课后两小时补录，checkin_at 指定为窗内时刻
	f.setClock(sessEnd.Add(2 * time.Hour))

	resp, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserID:    "student-a",
		CheckinAt: sessStart.Add(10 * time.Minute).Format(time.RFC3339),
	}, "teacher-t", model.RoleTeacher)
	if err != nil {
		t.Fatalf("窗内时刻的补录应成功: %v", err)
	}
	if resp.UserID != "student-a" {
		t.Errorf("期望记录 student-a，实际=%s", resp.UserID)
	}
}

func TestManualCheckin_BackfillOutsideWindow(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessEnd.Add(2 * time.Hour))

	// 补录时刻也在窗外，应被时间窗拦下
	_, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserID:    "student-a",
		CheckinAt: sessEnd.Add(time.Hour).Format(time.RFC3339),
	}, "teacher-t", model.RoleTeacher)
	if !errors.Is(err, ErrOutsideWindow) {
		t.Errorf("窗外补录期望 ErrOutsideWindow，实际: %v", err)
	}
}

func TestManualCheckin_StudentCannotTargetOthers(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	_, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserID:    "student-c",
	}, "student-a", model.RoleStudent)
	if !errors.Is(err, ErrCheckinForbidden) {
		t.Errorf("学生替他人签到期望 ErrCheckinForbidden，实际: %v", err)
	}
}

func TestManualCheckin_StaffRecordsEnrolledStudent(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	resp, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserID:    "student-a",
	}, "teacher-t", model.RoleTeacher)
	if err != nil {
		t.Fatalf("教师为已选课学生补录应成功: %v", err)
	}
	if resp.UserID != "student-a" {
		t.Errorf("期望记录 student-a，实际=%s", resp.UserID)
	}
}

func TestManualCheckin_StaffCannotRecordUnenrolled(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	_, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserID:    "student-b",
	}, "teacher-t", model.RoleTeacher)
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("为未选课学生补录期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestManualCheckin_TargetByEmail(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	resp, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserEmail: "a@test.com",
	}, "teacher-t", model.RoleTeacher)
	if err != nil {
		t.Fatalf("按邮箱补录应成功: %v", err)
	}
	if resp.UserID != "student-a" {
		t.Errorf("期望按邮箱解析到 student-a，实际=%s", resp.UserID)
	}
}

func TestManualCheckin_EmailNotFound(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	_, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "sess-1",
		UserEmail: "nobody@test.com",
	}, "teacher-t", model.RoleTeacher)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestManualCheckin_SessionNotFound(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	_, err := f.svc.ManualCheckin(context.Background(), &dto.ManualCheckinRequest{
		SessionID: "no-such-session",
	}, "student-a", model.RoleStudent)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际: %v", err)
	}
}

// ── 并发幂等性 ──

// TestQRCheckin_ConcurrentRedeems 同一学生并发兑换 N 次，
// 恰好一次 Recorded，其余 DuplicateAttendance。
func TestQRCheckin_ConcurrentRedeems(t *testing.T) {
	f := setupAttendanceFixture(t)
	f.setClock(sessStart)

	token, _ := f.codec.Mint("sess-1")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.QRCheckin(context.Background(), token, "student-a", model.RoleStudent)
		}(i)
	}
	wg.Wait()

	success, duplicate := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrDuplicateAttendance):
			duplicate++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	if success != 1 {
		t.Errorf("期望恰好 1 次成功，实际=%d", success)
	}
	if duplicate != n-1 {
		t.Errorf("期望 %d 次重复，实际=%d", n-1, duplicate)
	}
}

// ── 端到端场景 ──
//
// 场次 09:30~13:00：09:00 签发二维码（窗口开启前，签发不受限），
// 已选课学生窗口内兑换成功、重复兑换被拒、未选课被拒、窗口外被拒。

func TestCheckin_EndToEndScenario(t *testing.T) {
	f := setupAttendanceFixture(t)
	ctx := context.Background()

	// 09:00 教务签发
	f.setClock(time.Date(2025, 8, 16, 9, 0, 0, 0, time.UTC))
	mint, err := f.svc.MintQRToken(ctx, "sess-1")
	if err != nil {
		t.Fatalf("签发二维码应成功: %v", err)
	}

	// 09:03 学生 A 兑换（窗口内，Token 有效期内）
	f.setClock(time.Date(2025, 8, 16, 9, 3, 0, 0, time.UTC))
	if _, err := f.svc.QRCheckin(ctx, mint.Token, "student-a", model.RoleStudent); !errors.Is(err, ErrOutsideWindow) {
		t.Fatalf("09:03 在窗口开启前，期望 ErrOutsideWindow，实际: %v", err)
	}

	// 09:20 重新签发后学生 A 兑换 → 成功
	f.setClock(time.Date(2025, 8, 16, 9, 20, 0, 0, time.UTC))
	token2, _ := f.codec.Mint("sess-1")
	if _, err := f.svc.QRCheckin(ctx, token2, "student-a", model.RoleStudent); err != nil {
		t.Fatalf("09:20 学生A 兑换应成功: %v", err)
	}

	// 09:20 学生 B（未选课）兑换 → Forbidden 类
	if _, err := f.svc.QRCheckin(ctx, token2, "student-b", model.RoleStudent); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("未选课学生期望 ErrNotEnrolled，实际: %v", err)
	}

	// 09:25 学生 A 用新签 Token 再兑换 → 重复
	f.setClock(time.Date(2025, 8, 16, 9, 25, 0, 0, time.UTC))
	token3, _ := f.codec.Mint("sess-1")
	if _, err := f.svc.QRCheckin(ctx, token3, "student-a", model.RoleStudent); !errors.Is(err, ErrDuplicateAttendance) {
		t.Fatalf("重复兑换期望 ErrDuplicateAttendance，实际: %v", err)
	}

	// 13:14 学生 C 踩点兑换 → 成功（窗口终点 13:15 含）
	f.setClock(time.Date(2025, 8, 16, 13, 14, 0, 0, time.UTC))
	token4, _ := f.codec.Mint("sess-1")
	if _, err := f.svc.QRCheckin(ctx, token4, "student-c", model.RoleStudent); err != nil {
		t.Fatalf("13:14 在宽限期内，应成功: %v", err)
	}

	// 13:15:01 过窗
	f.setClock(time.Date(2025, 8, 16, 13, 15, 1, 0, time.UTC))
	token5, _ := f.codec.Mint("sess-1")
	if _, err := f.svc.QRCheckin(ctx, token5, "student-b", model.RoleStudent); !errors.Is(err, ErrOutsideWindow) {
		t.Fatalf("13:15:01 已过窗，期望 ErrOutsideWindow，实际: %v", err)
	}
}

// [自证通过] internal/service/attendance_service_test.go
