package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kahenya/sales-crm/auth"
	"github.com/kahenya/sales-crm/store"
)

const identityKey = "identity"

// Identity resolves the acting seller from the Authorization header and
// stores it in the request context. Requests without a credential, or with
// one that fails verification, continue as anonymous; handlers that need a
// caller use RequireIdentity.
//
// A first-party token is tried first. When an OIDC verifier is configured,
// provider-issued ID tokens are accepted as well, resolved to a seller by
// email.
func Identity(secret string, oidcVerifier *auth.OIDCVerifier, users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.Next()
			return
		}
		raw := strings.TrimPrefix(header, prefix)

		if ident, err := auth.ParseToken(raw, secret); err == nil {
			c.Set(identityKey, ident)
			c.Next()
			return
		}

		if oidcVerifier != nil {
			if email, err := oidcVerifier.VerifyEmail(c.Request.Context(), raw); err == nil {
				if user, err := users.GetByEmail(c.Request.Context(), email); err == nil {
					c.Set(identityKey, auth.Identity{
						ID:      user.ID,
						Email:   user.Email,
						Name:    user.Name,
						Surname: user.Surname,
					})
				}
			}
		}
		c.Next()
	}
}

// RequireIdentity aborts with 401 when the request is anonymous.
func RequireIdentity(c *gin.Context) {
	if _, ok := c.Get(identityKey); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}

// CallerIdentity returns the identity resolved for this request.
func CallerIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	ident, ok := v.(auth.Identity)
	return ident, ok
}
