package model

// RatingStar 评分星级表，对应 rating_stars，固定取值 1..5
type RatingStar struct {
	ID    int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Value int16 `gorm:"not null;uniqueIndex"     json:"value"`
}

// TableName 指定表名
func (RatingStar) TableName() string { return "rating_stars" }

// Rating 评分表，对应 ratings
// 每个 (course_id, user_id) 至多一条，重复提交时更新 star_id
type Rating struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"                             json:"id"`
	CourseID int64 `gorm:"not null;uniqueIndex:idx_ratings_course_user,priority:1" json:"course_id"`
	UserID   int64 `gorm:"not null;uniqueIndex:idx_ratings_course_user,priority:2" json:"user_id"`
	StarID   int64 `gorm:"not null"                                             json:"star_id"`
	BaseModel

	Course *Course     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	User   *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"   json:"-"`
	Star   *RatingStar `gorm:"foreignKey:StarID"                               json:"star,omitempty"`
}

// TableName 指定表名
func (Rating) TableName() string { return "ratings" }

// RatingSummary 课程评分汇总
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
