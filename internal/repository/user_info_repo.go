package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursehub/internal/model"
)

// UserInfoRepository 用户资料数据访问接口
type UserInfoRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.UserInfo, error)
	// Upsert 按 user_id 插入或更新，保证每个用户至多一条资料
	Upsert(ctx context.Context, info *model.UserInfo) error
}

type userInfoRepo struct {
	db *gorm.DB
}

// NewUserInfoRepo 创建 UserInfoRepository 实例
func NewUserInfoRepo(db *gorm.DB) UserInfoRepository {
	return &userInfoRepo{db: db}
}

func (r *userInfoRepo) GetByUserID(ctx context.Context, userID int64) (*model.UserInfo, error) {
	var info model.UserInfo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *userInfoRepo) Upsert(ctx context.Context, info *model.UserInfo) error {
	info.ID = 0 // 以 user_id 作为冲突键
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "bio", "avatar", "is_teacher", "updated_at"}),
		}).
		Create(info).Error
	if err != nil {
		return err
	}
	// 冲突更新时部分驱动不回填主键，重新读取
	fresh, err := r.GetByUserID(ctx, info.UserID)
	if err != nil {
		return err
	}
	*info = *fresh
	return nil
}
