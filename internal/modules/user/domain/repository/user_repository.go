package repository

import (
	"ShopRec/internal/modules/user/domain/entity"
	"context"
)

// UserRepository 接口定义
type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserById(ctx context.Context, id int64) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsUser(ctx context.Context, id int64) (bool, error)
	UpdateUser(ctx context.Context, user *entity.User) error
}
