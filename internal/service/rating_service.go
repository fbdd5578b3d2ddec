package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/internal/repository"
)

// ErrRatingInvalid 课程或星级不存在
var ErrRatingInvalid = errors.New("评分参数无效")

// RatingService 评分业务接口
type RatingService interface {
	// Rate 同一用户对同一课程重复评分时覆盖原星级
	Rate(ctx context.Context, userID int64, req *dto.RatingRequest) error
	Stars(ctx context.Context) ([]dto.RatingStarResponse, error)
}

type ratingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRatingService 创建 RatingService 实例
func NewRatingService(repo *repository.Repository, logger *zap.Logger) RatingService {
	return &ratingService{repo: repo, logger: logger}
}

func (s *ratingService) Rate(ctx context.Context, userID int64, req *dto.RatingRequest) error {
	if req.Course <= 0 || req.Star <= 0 {
		return ErrRatingInvalid
	}

	if _, err := s.repo.Course.GetByID(ctx, req.Course); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingInvalid
		}
		return err
	}
	if _, err := s.repo.RatingStar.GetByID(ctx, req.Star); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingInvalid
		}
		return err
	}

	rating := &model.Rating{CourseID: req.Course, UserID: userID, StarID: req.Star}
	if err := s.repo.Rating.Upsert(ctx, rating); err != nil {
		s.logger.Error("保存评分失败",
			zap.Int64("course_id", req.Course),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *ratingService) Stars(ctx context.Context) ([]dto.RatingStarResponse, error) {
	stars, err := s.repo.RatingStar.List(ctx)
	if err != nil {
		return nil, err
	}
	return toStarResponses(stars), nil
}
