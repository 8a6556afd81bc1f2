package middleware

import (
	"context"
	"net/http"
	"strings"

	"repairtrack/internal/apierror"
	"repairtrack/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	IdentityKey = "identity"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// UserResolver looks up the user a token was issued to.
type UserResolver interface {
	Identify(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// JWTAuth validates the Bearer token on every protected route and resolves it
// to a stored user. Any failure answers 401.
func JWTAuth(secret string, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.MsgUnauthenticated))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.MsgUnauthenticated))
			return
		}

		uid, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.MsgUnauthenticated))
			return
		}
		user, err := users.Identify(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(apierror.MsgUnauthenticated))
			return
		}

		c.Set(IdentityKey, &Identity{UserID: user.ID, Username: user.Username})
		c.Next()
	}
}

// GetIdentity returns the caller resolved by JWTAuth. Only valid on routes
// behind JWTAuth.
func GetIdentity(c *gin.Context) *Identity {
	id, _ := c.MustGet(IdentityKey).(*Identity)
	return id
}
