package model

// Category 分类表，对应 categories
type Category struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"             json:"id"`
	Name        string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:text"                            json:"description"`
	BaseModel
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }

// Tag 标签表，对应 tags
type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
}

// TableName 指定表名
func (Tag) TableName() string { return "tags" }

// TagCount 标签及其被课程引用的次数
type TagCount struct {
	Tag
	Count int64 `json:"count"`
}
