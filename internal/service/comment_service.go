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

var ErrCommentNotFound = errors.New("评论不存在")

// CommentService 评论业务接口
// 写操作成功后跳转回所属课程详情页
type CommentService interface {
	Create(ctx context.Context, slug string, courseID int64, actor Actor, req *dto.CommentRequest) (*dto.CommentMutationResponse, error)
	GetForEdit(ctx context.Context, courseID, commentID int64, actor Actor) (*dto.CommentFormResponse, error)
	Update(ctx context.Context, courseID, commentID int64, actor Actor, req *dto.CommentRequest) (*dto.CommentMutationResponse, error)
	Delete(ctx context.Context, courseID, commentID int64, actor Actor) (*dto.CommentMutationResponse, error)
}

type commentService struct {
	repo   *repository.Repository
	images ImageStorage
	logger *zap.Logger
}

// NewCommentService 创建 CommentService 实例
func NewCommentService(repo *repository.Repository, images ImageStorage, logger *zap.Logger) CommentService {
	return &commentService{repo: repo, images: images, logger: logger}
}

// Create 评论绑定到 (slug, id) 共同确定的课程，slug 不符视为课程不存在
func (s *commentService) Create(ctx context.Context, slug string, courseID int64, actor Actor, req *dto.CommentRequest) (*dto.CommentMutationResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Slug != slug {
		return nil, ErrCourseNotFound
	}
	if res := ValidateComment(req); !res.OK() {
		return nil, res.Err()
	}

	comment := &model.Comment{CourseID: course.ID, UserID: actor.UserID, Text: req.Text}
	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		s.logger.Error("创建评论失败", zap.Int64("course_id", courseID), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Comment.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	resp := toCommentResponse(created, s.images)
	return &dto.CommentMutationResponse{Comment: &resp, RedirectTo: CourseURL(course.Slug, course.ID)}, nil
}

func (s *commentService) GetForEdit(ctx context.Context, courseID, commentID int64, actor Actor) (*dto.CommentFormResponse, error) {
	course, comment, err := s.getOwned(ctx, courseID, commentID, actor)
	if err != nil {
		return nil, err
	}
	return &dto.CommentFormResponse{
		Comment:  toCommentResponse(comment, s.images),
		Slug:     course.Slug,
		CourseID: course.ID,
	}, nil
}

func (s *commentService) Update(ctx context.Context, courseID, commentID int64, actor Actor, req *dto.CommentRequest) (*dto.CommentMutationResponse, error) {
	course, comment, err := s.getOwned(ctx, courseID, commentID, actor)
	if err != nil {
		return nil, err
	}
	if res := ValidateComment(req); !res.OK() {
		return nil, res.Err()
	}

	comment.Text = req.Text
	if err := s.repo.Comment.Update(ctx, comment); err != nil {
		s.logger.Error("更新评论失败", zap.Int64("comment_id", commentID), zap.Error(err))
		return nil, err
	}

	resp := toCommentResponse(comment, s.images)
	return &dto.CommentMutationResponse{Comment: &resp, RedirectTo: CourseURL(course.Slug, course.ID)}, nil
}

func (s *commentService) Delete(ctx context.Context, courseID, commentID int64, actor Actor) (*dto.CommentMutationResponse, error) {
	course, _, err := s.getOwned(ctx, courseID, commentID, actor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Comment.Delete(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		s.logger.Error("删除评论失败", zap.Int64("comment_id", commentID), zap.Error(err))
		return nil, err
	}
	return &dto.CommentMutationResponse{RedirectTo: CourseURL(course.Slug, course.ID)}, nil
}

// ── 内部方法 ──

func (s *commentService) getCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// getOwned 评论须属于该课程，且操作者为评论作者或工作人员
func (s *commentService) getOwned(ctx context.Context, courseID, commentID int64, actor Actor) (*model.Course, *model.Comment, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	comment, err := s.repo.Comment.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCommentNotFound
		}
		s.logger.Error("查询评论失败", zap.Int64("comment_id", commentID), zap.Error(err))
		return nil, nil, err
	}
	if comment.CourseID != course.ID {
		return nil, nil, ErrCommentNotFound
	}
	if !actor.CanModify(comment.UserID) {
		return nil, nil, ErrNotOwner
	}
	return course, comment, nil
}
