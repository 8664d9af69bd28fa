package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/infrastructure/auth"
	"github.com/thaipharm/backend/internal/infrastructure/logger"
	"github.com/thaipharm/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Identity headers accepted when bearer tokens are not required
const (
	UserIDHeader   = "X-User-ID"
	BranchIDHeader = "X-Branch-ID"
)

// gin context keys
const (
	ClaimsKey   = "auth_claims"
	UserIDKey   = "auth_user_id"
	BranchIDKey = "auth_branch_id"
)

const bearerPrefix = "Bearer "

// TokenValidator verifies a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthConfig configures Authenticate
type AuthConfig struct {
	Tokens TokenValidator
	// Revocations is optional; lookup failures are logged and the token accepted
	Revocations auth.RevocationList
	// Required rejects requests without a bearer token. When false, the
	// X-User-ID and X-Branch-ID headers identify the caller.
	Required  bool
	SkipPaths []string
	Logger    *zap.Logger
}

// Authenticate resolves the acting user and home branch of a request and
// stores them on the gin context and in the request context used for logging.
// Requests without any identity continue anonymously unless Required is set;
// handlers that mutate stock reject anonymous callers themselves.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			if cfg.Required {
				abortAuth(c, dto.ErrCodeUnauthorized, "Missing authorization header")
				return
			}
			if !identifyFromHeaders(c) {
				abortAuth(c, dto.ErrCodeUnauthorized, "Invalid identity headers")
				return
			}
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" || cfg.Tokens == nil {
			abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid authorization header")
			return
		}

		claims, err := cfg.Tokens.Validate(token)
		if err != nil {
			log.Warn("Token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortAuth(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		if cfg.Revocations != nil {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims)
			if err != nil {
				log.Error("Revocation lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if revoked {
				abortAuth(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
				return
			}
		}

		userID, _ := claims.GetUserUUID()
		branchID, _ := claims.GetBranchUUID()
		c.Set(ClaimsKey, claims)
		setIdentity(c, userID, branchID)
		c.Next()
	}
}

// identifyFromHeaders reads X-User-ID and X-Branch-ID. It returns false when
// a present header is not a UUID.
func identifyFromHeaders(c *gin.Context) bool {
	var userID, branchID uuid.UUID
	if raw := c.GetHeader(UserIDHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return false
		}
		userID = id
	}
	if raw := c.GetHeader(BranchIDHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return false
		}
		branchID = id
	}
	setIdentity(c, userID, branchID)
	return true
}

func setIdentity(c *gin.Context, userID, branchID uuid.UUID) {
	ctx := c.Request.Context()
	if userID != uuid.Nil {
		c.Set(UserIDKey, userID)
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), userID.String())
	}
	if branchID != uuid.Nil {
		c.Set(BranchIDKey, branchID)
		ctx, _ = logger.WithBranchID(ctx, logger.FromContext(ctx), branchID.String())
	}
	c.Request = c.Request.WithContext(ctx)
}

// RequireRole rejects token holders lacking every one of roles. Callers
// identified by headers are trusted and pass.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.Next()
			return
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeForbidden, "Requires role: "+strings.Join(roles, " or "), GetRequestID(c)))
	}
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetClaims returns the verified token claims, or nil
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the acting user
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, UserIDKey)
}

// GetBranchID returns the caller's home branch
func GetBranchID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, BranchIDKey)
}

func getUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	if v, ok := c.Get(key); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
