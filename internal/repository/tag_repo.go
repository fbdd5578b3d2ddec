package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursehub/internal/model"
)

// TagRepository 标签数据访问接口
type TagRepository interface {
	// GetOrCreate 按 slug 取回标签，不存在的先创建；返回顺序不保证
	GetOrCreate(ctx context.Context, tags []model.Tag) ([]model.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tag, error)
	// MostCommon 按被课程引用次数降序（同次数按名称）返回前 limit 个标签
	MostCommon(ctx context.Context, limit int) ([]model.TagCount, error)
}

type tagRepo struct {
	db *gorm.DB
}

// NewTagRepo 创建 TagRepository 实例
func NewTagRepo(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) GetOrCreate(ctx context.Context, tags []model.Tag) ([]model.Tag, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	slugs := make([]string, 0, len(tags))
	pending := make([]model.Tag, 0, len(tags))
	for _, t := range tags {
		slugs = append(slugs, t.Slug)
		pending = append(pending, model.Tag{Name: t.Name, Slug: t.Slug})
	}

	// 并发创建同名标签时由唯一索引兜底
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&pending).Error; err != nil {
		return nil, err
	}

	var out []model.Tag
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) GetBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) MostCommon(ctx context.Context, limit int) ([]model.TagCount, error) {
	var out []model.TagCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, tags.slug, COUNT(course_tags.course_id) AS count").
		Joins("JOIN course_tags ON course_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.slug").
		Order("count DESC").
		Order("tags.name").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
