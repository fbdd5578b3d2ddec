package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/pkg/slug"
	"coursehub/pkg/storage"
)

// ── 用户模块业务错误 ──

var (
	ErrUserInfoNotFound   = errors.New("用户资料不存在")
	ErrUserSelfRoleChange = errors.New("不能停用自己或撤销自己的工作人员身份")
	ErrUserSelfDelete     = errors.New("不能删除自己")
)

// UserService 用户业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.ProfileUpdateRequest) (*dto.ProfileResponse, error)
	GetInfo(ctx context.Context, userID int64) (*dto.UserInfoResponse, error)
	UpsertInfo(ctx context.Context, userID int64, req *dto.UserInfoRequest) (*dto.UserInfoResponse, error)

	// 以下为工作人员操作
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	AdminUpdate(ctx context.Context, id int64, req *dto.AdminUserUpdateRequest, callerID int64) (*dto.UserResponse, error)
	Delete(ctx context.Context, id int64, callerID int64) error
}

type userService struct {
	repo   *repository.Repository
	tags   TagService
	images ImageStorage
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, tags TagService, images ImageStorage, logger *zap.Logger) UserService {
	return &userService{repo: repo, tags: tags, images: images, logger: logger}
}

// ────────────────────── 个人主页 ──────────────────────

func (s *userService) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, req *dto.ProfileUpdateRequest) (*dto.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if res := ValidateProfile(req, user); !res.OK() {
		return nil, res.Err()
	}

	original := user.Image
	next, stale, err := replaceImage(s.images, storage.DirUserAvatars, "image", original, req.Image, req.ClearImage)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Image = next
	if err := s.repo.User.Update(ctx, user); err != nil {
		if next != original {
			removeImage(s.images, next, s.logger)
		}
		s.logger.Error("更新个人资料失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	if stale != next {
		removeImage(s.images, stale, s.logger)
	}

	return s.profile(ctx, user)
}

func (s *userService) profile(ctx context.Context, user *model.User) (*dto.ProfileResponse, error) {
	resp := &dto.ProfileResponse{User: toUserResponse(user, s.images)}
	info, err := s.repo.UserInfo.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		resp.Info = toUserInfoResponse(info, s.images)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询用户资料失败", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	resp.Form = dto.ProfileForm(resp.User)
	return resp, nil
}

// ────────────────────── 扩展资料 ──────────────────────

func (s *userService) GetInfo(ctx context.Context, userID int64) (*dto.UserInfoResponse, error) {
	info, err := s.repo.UserInfo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserInfoNotFound
		}
		return nil, err
	}
	return toUserInfoResponse(info, s.images), nil
}

func (s *userService) UpsertInfo(ctx context.Context, userID int64, req *dto.UserInfoRequest) (*dto.UserInfoResponse, error) {
	if res := ValidateUserInfo(req); !res.OK() {
		return nil, res.Err()
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	info := &model.UserInfo{UserID: userID}
	existing, err := s.repo.UserInfo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		info.Avatar = existing.Avatar
		info.IsTeacher = existing.IsTeacher
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	original := info.Avatar
	next, stale, err := replaceImage(s.images, storage.DirInfoAvatars, "avatar", original, req.Avatar, req.ClearAvatar)
	if err != nil {
		return nil, err
	}
	info.Name = req.Name
	info.Bio = req.Bio
	info.Avatar = next

	if err := s.repo.UserInfo.Upsert(ctx, info); err != nil {
		if next != original {
			removeImage(s.images, next, s.logger)
		}
		s.logger.Error("保存用户资料失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	if stale != next {
		removeImage(s.images, stale, s.logger)
	}
	return toUserInfoResponse(info, s.images), nil
}

// ────────────────────── 用户管理 ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i], s.images))
	}
	return out, total, nil
}

func (s *userService) AdminUpdate(ctx context.Context, id int64, req *dto.AdminUserUpdateRequest, callerID int64) (*dto.UserResponse, error) {
	if id == callerID &&
		((req.IsActive != nil && !*req.IsActive) || (req.IsStaff != nil && !*req.IsStaff)) {
		return nil, ErrUserSelfRoleChange
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil || req.IsStaff != nil {
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if req.IsStaff != nil {
			user.IsStaff = *req.IsStaff
		}
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.logger.Error("更新用户标志失败", zap.Int64("user_id", id), zap.Error(err))
			return nil, err
		}
	}

	if req.IsTeacher != nil {
		if err := s.setTeacher(ctx, user, *req.IsTeacher); err != nil {
			return nil, err
		}
	}

	s.logger.Info("管理员修改用户",
		zap.Int64("user_id", id),
		zap.Int64("operator", callerID),
		zap.Bool("is_active", user.IsActive),
		zap.Bool("is_staff", user.IsStaff),
	)

	resp := toUserResponse(user, s.images)
	return &resp, nil
}

// setTeacher 资料不存在时以用户名作为展示名创建
func (s *userService) setTeacher(ctx context.Context, user *model.User, isTeacher bool) error {
	info, err := s.repo.UserInfo.GetByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		info = &model.UserInfo{UserID: user.ID, Name: slug.Truncate(user.Username, 50)}
	}
	info.IsTeacher = isTeacher
	if err := s.repo.UserInfo.Upsert(ctx, info); err != nil {
		s.logger.Error("更新教师标志失败", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id int64, callerID int64) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	orphaned, err := s.repo.User.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	// 用户的课程随之删除，热门标签计数随之变化
	s.tags.Invalidate(ctx)
	removeImage(s.images, user.Image, s.logger)
	for _, rel := range orphaned {
		removeImage(s.images, rel, s.logger)
	}

	s.logger.Info("删除用户", zap.Int64("user_id", id), zap.Int64("operator", callerID))
	return nil
}

// ── 内部方法 ──

func (s *userService) getUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}
