package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"coursehub/internal/dto"
	"coursehub/internal/repository"
	"coursehub/pkg/redis"
)

// PopularTagLimit 首页展示的热门标签数量
const PopularTagLimit = 3

const popularTagsCacheKey = "tags:most_common"

// TagService 标签业务接口
type TagService interface {
	// PopularTags 引用次数最多的标签，优先读缓存
	PopularTags(ctx context.Context) ([]dto.TagCountResponse, error)
	// Refresh 重新统计并写入缓存
	Refresh(ctx context.Context) ([]dto.TagCountResponse, error)
	// Invalidate 课程标签变化后清除缓存
	Invalidate(ctx context.Context)
}

type tagService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewTagService 创建 TagService 实例；cache 为 nil 时每次直接查库
func NewTagService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) TagService {
	return &tagService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *tagService) PopularTags(ctx context.Context) ([]dto.TagCountResponse, error) {
	if s.cache != nil {
		var cached []dto.TagCountResponse
		err := s.cache.GetJSON(ctx, popularTagsCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			// 缓存故障降级为直接查库
			s.logger.Warn("读取热门标签缓存失败", zap.Error(err))
		}
	}
	return s.Refresh(ctx)
}

func (s *tagService) Refresh(ctx context.Context) ([]dto.TagCountResponse, error) {
	counts, err := s.repo.Tag.MostCommon(ctx, PopularTagLimit)
	if err != nil {
		s.logger.Error("统计热门标签失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.TagCountResponse, 0, len(counts))
	for i := range counts {
		out = append(out, dto.TagCountResponse{
			TagResponse: toTagResponse(&counts[i].Tag),
			Count:       counts[i].Count,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, popularTagsCacheKey, out, s.ttl); err != nil {
			s.logger.Warn("写入热门标签缓存失败", zap.Error(err))
		}
	}
	return out, nil
}

func (s *tagService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, popularTagsCacheKey); err != nil {
		s.logger.Warn("清除热门标签缓存失败", zap.Error(err))
	}
}
