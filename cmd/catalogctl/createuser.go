package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/internal/service"
	"coursehub/pkg/slug"
)

// createUserOptions createuser 参数
type createUserOptions struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Staff     bool
	Teacher   bool
}

func newCreateUserCmd(a *app) *cobra.Command {
	var opts createUserOptions
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "创建账号（可指定工作人员 / 教师）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := createUser(cmd.Context(), repository.NewRepository(a.db), opts)
			if err != nil {
				return err
			}
			a.logger.Info("账号已创建",
				zap.Int64("user_id", user.ID),
				zap.String("username", user.Username),
				zap.Bool("is_staff", user.IsStaff),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Username)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Username, "username", "", "用户名")
	f.StringVar(&opts.Email, "email", "", "邮箱")
	f.StringVar(&opts.Password, "password", "", "密码")
	f.StringVar(&opts.FirstName, "first-name", "", "名")
	f.StringVar(&opts.LastName, "last-name", "", "姓")
	f.BoolVar(&opts.Staff, "staff", false, "工作人员")
	f.BoolVar(&opts.Teacher, "teacher", false, "同时创建教师资料")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// createUser 账号与教师资料在同一事务内写入
func createUser(ctx context.Context, repo *repository.Repository, opts createUserOptions) (*model.User, error) {
	// 密码规则与注册页一致；命令行不要求姓名
	req := &dto.RegisterRequest{
		FirstName: "-",
		LastName:  "-",
		Username:  opts.Username,
		Email:     opts.Email,
		Password1: opts.Password,
		Password2: opts.Password,
	}
	if res := service.ValidateRegister(req); !res.OK() {
		return nil, res.Err()
	}
	if _, err := repo.User.GetByUsername(ctx, opts.Username); err == nil {
		return nil, fmt.Errorf("用户名 %s 已存在", opts.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: string(hash),
		FirstName:    opts.FirstName,
		LastName:     opts.LastName,
		IsStaff:      opts.Staff,
		IsActive:     true,
	}

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := repo.WithTx(tx)
	if err := insertUser(ctx, txRepo, user, opts.Teacher); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

func insertUser(ctx context.Context, repo *repository.Repository, user *model.User, teacher bool) error {
	if err := repo.User.Create(ctx, user); err != nil {
		return err
	}
	if !teacher {
		return nil
	}
	info := &model.UserInfo{UserID: user.ID, Name: slug.Truncate(user.Username, 50), IsTeacher: true}
	if err := repo.UserInfo.Upsert(ctx, info); err != nil {
		return fmt.Errorf("创建教师资料失败: %w", err)
	}
	return nil
}
