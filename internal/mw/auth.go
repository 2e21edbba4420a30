package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/auth"
)

// principalKey is where Protect stores the verified principal in the gin
// context.
const principalKey = "principal"

// Protect verifies the session token (cookie first, then bearer header) and
// attaches the principal to the request context. Requests without a valid
// credential never reach the handler.
func Protect(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.SessionCookie)
		if token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}

		principal, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Require gates the route on the authorization policy for one action.
// It must run after Protect.
func Require(action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		if !auth.Allowed(action, principal.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "role '" + string(principal.Role) + "' may not perform this action",
			})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal Protect attached to the request.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}
