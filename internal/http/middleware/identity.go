package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

type IdentityConfig struct {
	// JWTSecret switches identity to HS256 bearer tokens; the sub claim is the
	// user id and the header and default user are ignored.
	JWTSecret   string
	UserHeader  string
	DefaultUser string
}

type IdentityMiddleware struct {
	log    *logger.Logger
	secret []byte
	header string
	dflt   string
}

func NewIdentityMiddleware(log *logger.Logger, cfg IdentityConfig) *IdentityMiddleware {
	header := strings.TrimSpace(cfg.UserHeader)
	if header == "" {
		header = "X-User-Id"
	}
	return &IdentityMiddleware{
		log:    log.With("Middleware", "IdentityMiddleware"),
		secret: []byte(strings.TrimSpace(cfg.JWTSecret)),
		header: header,
		dflt:   strings.TrimSpace(cfg.DefaultUser),
	}
}

func (m *IdentityMiddleware) ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.resolve(c)
		if err != nil {
			m.log.Debug("identity rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

var errMissingToken = errors.New("missing or invalid token")

func (m *IdentityMiddleware) resolve(c *gin.Context) (string, error) {
	if len(m.secret) > 0 {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return "", errMissingToken
		}
		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			return "", errMissingToken
		}
		if sub := strings.TrimSpace(claims.Subject); sub != "" {
			return sub, nil
		}
		return "", errors.New("token has no subject")
	}
	if id := strings.TrimSpace(c.GetHeader(m.header)); id != "" {
		return id, nil
	}
	if m.dflt != "" {
		return m.dflt, nil
	}
	return "", errors.New("no user identity")
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// BodyLimit caps request bodies at n bytes.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
