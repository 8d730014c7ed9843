package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ShopRec/internal/modules/user/application/dto/request"
	"ShopRec/internal/modules/user/application/dto/respond"
	"ShopRec/internal/modules/user/domain/entity"
	"ShopRec/internal/modules/user/domain/repository"
	"ShopRec/pkg/util/myjwt"
	"ShopRec/pkg/xerr"
	"ShopRec/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 接口定义 (Application Service)
type UserService interface {
	AddUser(ctx context.Context, req request.AddUserRequest) (*respond.AddUserRespond, error)
	Register(ctx context.Context, req request.RegisterRequest) (*respond.UserProfileRespond, error)
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	Profile(ctx context.Context, userID int64) (*respond.UserProfileRespond, error)
}

type userServiceImpl struct {
	repo repository.UserRepository
}

// NewUserService 构造函数
func NewUserService(repo repository.UserRepository) UserService {
	return &userServiceImpl{repo: repo}
}

func (s *userServiceImpl) AddUser(ctx context.Context, req request.AddUserRequest) (*respond.AddUserRespond, error) {
	user := entity.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Gender:    strings.TrimSpace(req.Gender),
		Location:  strings.TrimSpace(req.Location),
		CreatedAt: time.Now(),
	}
	if user.Name == "" {
		return nil, xerr.ErrParam
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		zlog.Error("create user failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.AddUserRespond{Message: "User added", UserId: user.UserId}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, req request.RegisterRequest) (*respond.UserProfileRespond, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, xerr.ErrParam
	}

	// 1. 邮箱唯一；/add_user 建的无密码用户可以补注册
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil && existing.PasswordHash != "" {
		return nil, xerr.New(xerr.Conflict, "邮箱已注册")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Error("lookup user by email failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zlog.Error("hash password failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}

	if existing != nil {
		return s.claim(ctx, existing, req, string(hash))
	}

	user := entity.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Gender:       strings.TrimSpace(req.Gender),
		Location:     strings.TrimSpace(req.Location),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		zlog.Error("create user failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	p := toProfile(&user)
	return &p, nil
}

// claim 给无密码用户设置密码，空着的资料字段用注册信息补齐
func (s *userServiceImpl) claim(ctx context.Context, user *entity.User, req request.RegisterRequest, hash string) (*respond.UserProfileRespond, error) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&user.Name, req.Name)
	fill(&user.Gender, req.Gender)
	fill(&user.Location, req.Location)
	user.PasswordHash = hash
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		zlog.Error("update user failed", zap.Int64("user_id", user.UserId), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	p := toProfile(user)
	return &p, nil
}

func (s *userServiceImpl) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.Unauthorized, "邮箱或密码错误")
		}
		zlog.Error("lookup user by email failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	// 通过 /add_user 创建的用户没有密码，不能登录
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, xerr.New(xerr.Unauthorized, "邮箱或密码错误")
	}

	token, err := myjwt.GenerateToken(user.UserId, user.Email)
	if err != nil {
		zlog.Error("generate token failed", zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.LoginRespond{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        toProfile(user),
	}, nil
}

func (s *userServiceImpl) Profile(ctx context.Context, userID int64) (*respond.UserProfileRespond, error) {
	if userID <= 0 {
		return nil, xerr.ErrUnauthorized
	}
	user, err := s.repo.GetUserById(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrNotFound
		}
		zlog.Error("get user failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	p := toProfile(user)
	return &p, nil
}

func toProfile(u *entity.User) respond.UserProfileRespond {
	return respond.UserProfileRespond{
		UserId:    u.UserId,
		Name:      u.Name,
		Email:     u.Email,
		Gender:    u.Gender,
		Location:  u.Location,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
