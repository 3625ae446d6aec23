package dto

// ── 场次模块 DTO ──

// CreateSessionRequest 创建场次请求（时间统一 RFC 3339 / UTC）
type CreateSessionRequest struct {
	CourseID    string `json:"course_id"    binding:"required,uuid"`
	SessionDate string `json:"session_date" binding:"required"` // YYYY-MM-DD
	StartAt     string `json:"start_at"     binding:"required"`
	EndAt       string `json:"end_at"       binding:"required"`
}

// UpdateSessionRequest 更新场次请求
type UpdateSessionRequest struct {
	SessionDate *string `json:"session_date"`
	StartAt     *string `json:"start_at"`
	EndAt       *string `json:"end_at"`
}

// SessionResponse 场次信息响应
type SessionResponse struct {
	ID          string          `json:"id"`
	CourseID    string          `json:"course_id"`
	SessionDate string          `json:"session_date"`
	StartAt     string          `json:"start_at"`
	EndAt       string          `json:"end_at"`
	Course      *CourseResponse `json:"course,omitempty"`
}

// MintQRResponse 签到二维码响应
type MintQRResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`        // 前端扫码落地页，含 token 参数
	ExpiresIn int    `json:"expires_in"` // Token 有效期（秒）
}
