package middleware

import (
	"context"
	"net/http"
	"strings"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/util"
	"algoritmia_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RevocationChecker reports tokens that were logged out before expiring.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserFinder loads live users. Soft-deleted users are not found.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthMiddleware requires a valid bearer token and stores its claims under
// util.UserKey. When users is set, the token's user must still exist and hold
// the role the token was issued for. revoked and users may be nil.
func AuthMiddleware(secret string, revoked RevocationChecker, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || tokenString == authHeader || tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("Rejected token", zap.Error(err), zap.String("request_id", c.GetString(util.RequestIDKey)))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				util.LogInternalError(c, err)
				c.Abort()
				return
			}
			if isRevoked {
				util.Error(c, http.StatusUnauthorized, util.ErrTokenRevoked.Error())
				c.Abort()
				return
			}
		}

		if users != nil {
			user, err := users.FindByID(c.Request.Context(), claims.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Role != claims.Role) {
				util.Error(c, http.StatusUnauthorized, util.ErrAccountInactive.Error())
				c.Abort()
				return
			}
			if err != nil {
				util.LogInternalError(c, err)
				c.Abort()
				return
			}
		}

		c.Set(util.UserKey, claims)
		c.Next()
	}
}

// RoleMiddleware lets through the listed roles. Admins pass every gate.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
