package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursehub/internal/model"
)

// RatingRepository 评分数据访问接口
type RatingRepository interface {
	// Upsert 以 (course_id, user_id) 为冲突键插入或更新 star_id，单条语句完成
	Upsert(ctx context.Context, rating *model.Rating) error
	GetByCourseAndUser(ctx context.Context, courseID, userID int64) (*model.Rating, error)
	Summary(ctx context.Context, courseID int64) (*model.RatingSummary, error)
}

type ratingRepo struct {
	db *gorm.DB
}

// NewRatingRepo 创建 RatingRepository 实例
func NewRatingRepo(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

func (r *ratingRepo) Upsert(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"star_id", "updated_at"}),
		}).
		Create(rating).Error
}

func (r *ratingRepo) GetByCourseAndUser(ctx context.Context, courseID, userID int64) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Preload("Star").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepo) Summary(ctx context.Context, courseID int64) (*model.RatingSummary, error) {
	var sum model.RatingSummary
	err := r.db.WithContext(ctx).
		Table("ratings").
		Select("COALESCE(AVG(rating_stars.value), 0) AS average, COUNT(ratings.id) AS count").
		Joins("JOIN rating_stars ON rating_stars.id = ratings.star_id").
		Where("ratings.course_id = ?", courseID).
		Scan(&sum).Error
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// RatingStarRepository 星级数据访问接口
type RatingStarRepository interface {
	// List 按星级值降序
	List(ctx context.Context) ([]model.RatingStar, error)
	GetByID(ctx context.Context, id int64) (*model.RatingStar, error)
}

type ratingStarRepo struct {
	db *gorm.DB
}

// NewRatingStarRepo 创建 RatingStarRepository 实例
func NewRatingStarRepo(db *gorm.DB) RatingStarRepository {
	return &ratingStarRepo{db: db}
}

func (r *ratingStarRepo) List(ctx context.Context) ([]model.RatingStar, error) {
	var stars []model.RatingStar
	err := r.db.WithContext(ctx).Order("value DESC").Find(&stars).Error
	return stars, err
}

func (r *ratingStarRepo) GetByID(ctx context.Context, id int64) (*model.RatingStar, error) {
	var star model.RatingStar
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&star).Error; err != nil {
		return nil, err
	}
	return &star, nil
}
