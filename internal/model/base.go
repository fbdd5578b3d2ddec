package model

import "time"

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// DateOf 截取 t 的 UTC 日期（零点），用于 slug 的按日唯一约束
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AllModels 按依赖顺序返回全部模型，供测试库 AutoMigrate 使用
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserInfo{},
		&Category{},
		&Tag{},
		&Course{},
		&Comment{},
		&RatingStar{},
		&Rating{},
	}
}

// [自证通过] internal/model/base.go
