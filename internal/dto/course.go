package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	DayOfWeek   *int   `json:"day_of_week" binding:"required,min=0,max=6"` // 0=周日 … 6=周六
	StartTime   string `json:"start_time"  binding:"required"`             // HH:MM
	EndTime     string `json:"end_time"    binding:"required"`             // HH:MM
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	DayOfWeek   *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// CourseDetailResponse 课程详情（含选课名单与场次列表）
type CourseDetailResponse struct {
	CourseResponse
	Students []UserResponse    `json:"students"`
	Sessions []SessionResponse `json:"sessions"`
}
