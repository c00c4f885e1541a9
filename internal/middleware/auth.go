// Package middleware holds the gin middleware shared by all routes.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/service"
)

const (
	userIDKey = "userID"
	emailKey  = "email"
)

// UserLookup resolves the verified email of a token to a user record.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Claims is the identity token payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth verifies the bearer token and loads the caller. WebSocket upgrades
// may pass the token in the token query parameter instead.
func Auth(secret []byte, users UserLookup, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			unauthorized(c, "Not authorized, no token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Debug("token rejected", "error", err)
			unauthorized(c, "Not authorized, invalid token")
			return
		}
		if claims.Email == "" {
			unauthorized(c, "Not authorized, invalid token")
			return
		}

		user, err := users.GetUserByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				unauthorized(c, "User not found")
				return
			}
			log.Error("failed to load caller", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "failed to load user"))
			return
		}

		SetIdentity(c, user.UserID, user.Email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if websocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", message))
}

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// SetIdentity stores the verified caller on the request context.
func SetIdentity(c *gin.Context, userID, email string) {
	c.Set(userIDKey, userID)
	c.Set(emailKey, email)
}

// UserID returns the verified caller's user ID.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Email returns the verified caller's email.
func Email(c *gin.Context) string {
	return c.GetString(emailKey)
}
