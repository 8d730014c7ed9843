package jwt

import (
	"ShopRec/pkg/back"
	"ShopRec/pkg/util/myjwt"
	"ShopRec/pkg/xerr"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseHeader(c)
		if !ok {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Next()
	}
}

// Optional 有合法 token 时注入用户信息，没有时放行
func Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseHeader(c); ok {
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
		}
		c.Next()
	}
}

func parseHeader(c *gin.Context) (*myjwt.CustomClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	claims, err := myjwt.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}
