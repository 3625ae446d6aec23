package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RyzenGhost/Moodle/internal/dto"
	"github.com/RyzenGhost/Moodle/internal/model"
	"github.com/RyzenGhost/Moodle/internal/repository"
)

// ── 选课模块业务错误 ──

var (
	ErrAlreadyEnrolled    = errors.New("该学生已选此课程")
	ErrEnrollmentNotFound = errors.New("选课记录不存在")
)

// EnrollmentService 选课业务接口
type EnrollmentService interface {
	Create(ctx context.Context, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error)
	ListByCourse(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.EnrollmentResponse, error)
	Delete(ctx context.Context, userID, courseID string) error
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *enrollmentService) Create(ctx context.Context, req *dto.CreateEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:   req.UserID,
		CourseID: req.CourseID,
	}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		// 唯一约束兜底并发重复选课
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("创建选课失败", zap.Error(err))
		return nil, err
	}

	return &dto.EnrollmentResponse{
		ID: enrollment.EnrollmentID,
		User: &dto.UserResponse{
			ID:       user.UserID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     string(user.Role),
		},
		Course: &dto.CourseResponse{
			ID:          course.CourseID,
			Name:        course.Name,
			Description: course.Description,
			DayOfWeek:   course.DayOfWeek,
			StartTime:   course.StartTime.Format("15:04"),
			EndTime:     course.EndTime.Format("15:04"),
		},
	}, nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出选课失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		item := dto.EnrollmentResponse{ID: e.EnrollmentID}
		if e.User != nil {
			item.User = &dto.UserResponse{
				ID:       e.User.UserID,
				FullName: e.User.FullName,
				Email:    e.User.Email,
				Role:     string(e.User.Role),
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *enrollmentService) ListMine(ctx context.Context, userID string) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出选课失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		item := dto.EnrollmentResponse{ID: e.EnrollmentID}
		if e.Course != nil {
			item.Course = &dto.CourseResponse{
				ID:          e.Course.CourseID,
				Name:        e.Course.Name,
				Description: e.Course.Description,
				DayOfWeek:   e.Course.DayOfWeek,
				StartTime:   e.Course.StartTime.Format("15:04"),
				EndTime:     e.Course.EndTime.Format("15:04"),
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *enrollmentService) Delete(ctx context.Context, userID, courseID string) error {
	if _, err := s.repo.Enrollment.GetByUserAndCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	if err := s.repo.Enrollment.Delete(ctx, userID, courseID); err != nil {
		s.logger.Error("退课失败", zap.String("user_id", userID), zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// [自证通过] internal/service/enrollment_service.go
