package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// StaffIDKey is the context key for the authenticated staff member.
	StaffIDKey = "staff_id"
	// StaffRoleKey is the context key for the staff role.
	StaffRoleKey = "staff_role"
)

// StaffClaims are the JWT claims issued by the identity service for
// back-office staff. Token issuance lives outside this service; only
// verification happens here.
type StaffClaims struct {
	StaffID string `json:"staff_id"`
	Role    string `json:"role"` // staff, admin
	jwt.RegisteredClaims
}

// StaffAuth returns a middleware that validates staff JWT tokens.
func StaffAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		claims := &StaffClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid || claims.StaffID == "" {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(StaffIDKey, claims.StaffID)
		c.Set(StaffRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin aborts unless the authenticated staff member has the
// admin role. Must run after StaffAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(StaffRoleKey) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "admin role required",
				},
			})
			return
		}
		c.Next()
	}
}

// GetStaffID returns the authenticated staff ID from context.
func GetStaffID(c *gin.Context) string {
	return c.GetString(StaffIDKey)
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthorizationHeader)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, BearerPrefix)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
