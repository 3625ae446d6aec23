package dto

// ── 报表模块 DTO ──

// ReportRequest 考勤报表查询参数
type ReportRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	From     string `form:"from"      binding:"omitempty"` // YYYY-MM-DD
	To       string `form:"to"        binding:"omitempty"` // YYYY-MM-DD
	Format   string `form:"format"    binding:"omitempty,oneof=json csv xlsx"`
}

// SummaryRequest 考勤汇总查询参数
type SummaryRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	From     string `form:"from"      binding:"omitempty"`
	To       string `form:"to"        binding:"omitempty"`
	GroupBy  string `form:"group_by"  binding:"omitempty,oneof=student course"`
}

// ReportRow 报表明细行
type ReportRow struct {
	StudentName string `json:"student_name"`
	StudentMail string `json:"student_email"`
	CourseName  string `json:"course_name"`
	SessionDate string `json:"session_date"`
	Status      string `json:"status"`
	CheckinAt   string `json:"checkin_at"`
}

// SummaryRow 汇总行（按学生或按课程聚合）
type SummaryRow struct {
	Key       string  `json:"key"` // 学生邮箱或课程名
	Label     string  `json:"label"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"` // 出勤率，0~1
}
