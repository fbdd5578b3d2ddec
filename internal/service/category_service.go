package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/pkg/validate"
)

var ErrCategoryNotFound = errors.New("分类不存在")

// CategoryService 课程分类业务接口
type CategoryService interface {
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Create(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id int64, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCategoryService 创建 CategoryService 实例
func NewCategoryService(repo *repository.Repository, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, logger: logger}
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.Category.List(ctx)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	return out, nil
}

func (s *categoryService) Create(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if res := ValidateCategory(req); !res.OK() {
		return nil, res.Err()
	}

	category := &model.Category{Name: req.Name, Description: req.Description}
	if err := s.repo.Category.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validate.Field("name", "分类名称已存在")
		}
		s.logger.Error("创建分类失败", zap.Error(err))
		return nil, err
	}

	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if res := ValidateCategory(req); !res.OK() {
		return nil, res.Err()
	}

	category, err := s.repo.Category.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := s.repo.Category.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validate.Field("name", "分类名称已存在")
		}
		s.logger.Error("更新分类失败", zap.Int64("category_id", id), zap.Error(err))
		return nil, err
	}

	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Category.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		s.logger.Error("删除分类失败", zap.Int64("category_id", id), zap.Error(err))
		return err
	}
	return nil
}
