package dto

// ── 考勤模块 DTO ──

// QRCheckinRequest 扫码签到请求
type QRCheckinRequest struct {
	Token string `json:"token" binding:"required"`
}

// ManualCheckinRequest 手工补录签到请求。
// user_id 与 user_email 二选一；都不填时默认记录调用者本人。
type ManualCheckinRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
	UserID    string `json:"user_id"    binding:"omitempty,uuid"`
	UserEmail string `json:"user_email" binding:"omitempty,email"`
	Status    string `json:"status"     binding:"omitempty,oneof=present late excused"`
	CheckinAt string `json:"checkin_at"` // RFC 3339，空则取当前时刻
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	UserID    string           `json:"user_id"`
	Status    string           `json:"status"`
	CheckinAt string           `json:"checkin_at"`
	User      *UserResponse    `json:"user,omitempty"`
	Session   *SessionResponse `json:"session,omitempty"`
}
