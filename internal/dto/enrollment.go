package dto

// ── 选课模块 DTO ──

// CreateEnrollmentRequest 选课请求
type CreateEnrollmentRequest struct {
	UserID   string `json:"user_id"   binding:"required,uuid"`
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// EnrollmentResponse 选课信息响应
type EnrollmentResponse struct {
	ID     string          `json:"id"`
	User   *UserResponse   `json:"user,omitempty"`
	Course *CourseResponse `json:"course,omitempty"`
}
