package service

import (
	"context"
	"testing"

	"ShopRec/internal/config"
	"ShopRec/internal/initial"
	"ShopRec/internal/modules/user/application/dto/request"
	"ShopRec/internal/modules/user/infrastructure/persistence"
	"ShopRec/pkg/util/myjwt"
	"ShopRec/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	db, err := initial.OpenSQLite(":memory:")
	require.NoError(t, err)

	c, err := config.Decode("")
	require.NoError(t, err)
	c.JwtConfig.Key = "user-service-test"
	config.SetConfig(c)
	t.Cleanup(func() { config.SetConfig(nil) })

	return NewUserService(persistence.NewUserRepository(db))
}

func TestUserService_AddUser(t *testing.T) {
	svc := newUserService(t)
	out, err := svc.AddUser(context.Background(), request.AddUserRequest{Name: "Alice", Email: "alice@example.com", Gender: "F", Location: "NYC"})
	require.NoError(t, err)
	assert.Equal(t, "User added", out.Message)
	assert.EqualValues(t, 1, out.UserId)

	p, err := svc.Profile(context.Background(), out.UserId)
	require.NoError(t, err)
	assert.Equal(t, "NYC", p.Location)

	// 无密码的用户不能登录
	_, err = svc.Login(context.Background(), request.LoginRequest{Email: "alice@example.com", Password: "x"})
	assert.Equal(t, xerr.Unauthorized, xerr.CodeOf(err))
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, request.RegisterRequest{Name: "Bob", Email: "Bob@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", p.Email)

	_, err = svc.Register(ctx, request.RegisterRequest{Name: "Bob2", Email: "bob@example.com", Password: "secret2"})
	assert.Equal(t, xerr.Conflict, xerr.CodeOf(err))

	_, err = svc.Login(ctx, request.LoginRequest{Email: "bob@example.com", Password: "wrong"})
	assert.Equal(t, xerr.Unauthorized, xerr.CodeOf(err))

	out, err := svc.Login(ctx, request.LoginRequest{Email: " BOB@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, p.UserId, out.User.UserId)

	claims, err := myjwt.ParseToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p.UserId, claims.UserID)
}

func TestUserService_RegisterClaimsAddedUser(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	added, err := svc.AddUser(ctx, request.AddUserRequest{Name: "Carol", Email: "Carol@Example.com", Location: "LA"})
	require.NoError(t, err)
	p, err := svc.Profile(ctx, added.UserId)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", p.Email)

	p, err = svc.Register(ctx, request.RegisterRequest{Name: "Caroline", Email: "carol@example.com", Gender: "F", Password: "secret3"})
	require.NoError(t, err)
	assert.Equal(t, added.UserId, p.UserId)
	assert.Equal(t, "Carol", p.Name)
	assert.Equal(t, "LA", p.Location)
	assert.Equal(t, "F", p.Gender)

	out, err := svc.Login(ctx, request.LoginRequest{Email: "CAROL@example.com", Password: "secret3"})
	require.NoError(t, err)
	assert.Equal(t, added.UserId, out.User.UserId)

	// 设置过密码后再注册即冲突
	_, err = svc.Register(ctx, request.RegisterRequest{Email: "carol@example.com", Password: "other"})
	assert.Equal(t, xerr.Conflict, xerr.CodeOf(err))
}

func TestUserService_Profile(t *testing.T) {
	svc := newUserService(t)
	_, err := svc.Profile(context.Background(), 0)
	assert.Equal(t, xerr.Unauthorized, xerr.CodeOf(err))
	_, err = svc.Profile(context.Background(), 12)
	assert.Equal(t, xerr.NotFound, xerr.CodeOf(err))
}
