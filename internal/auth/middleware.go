package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neighborhood-library/api-service/internal/entities"
)

// contextKeyPrincipal is the gin context key the middleware stores the
// authenticated principal under.
const contextKeyPrincipal = "auth_principal"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   uint
	Role     entities.Role
	MemberID *uint
}

func (p Principal) IsAdmin() bool {
	return p.Role == entities.RoleAdmin
}

// UserStore loads users while authenticating; the user row is re-read on
// every request so role changes and deactivation take effect immediately.
type UserStore interface {
	GetByID(id uint) (*entities.User, error)
}

// RequireAuth validates the bearer token and attaches the principal to the
// request context. Missing, invalid or expired tokens and inactive accounts
// get 401.
func RequireAuth(secret string, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}

		claims, err := VerifyToken(token, secret)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		user, err := users.GetByID(claims.UserID)
		if err != nil || !user.IsActive {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(contextKeyPrincipal, Principal{
			UserID:   user.ID,
			Role:     user.Role,
			MemberID: user.MemberID,
		})
		c.Next()
	}
}

// RequireAdmin rejects non-admin principals with 403. Must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin privileges required",
			})
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from the gin context.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(contextKeyPrincipal)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
