package authz

import "github.com/gin-gonic/gin"

// contextKey is the gin context key the resolved principal is stored under.
const contextKey = "principal"

// SetPrincipal stores the resolved principal on the request context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(contextKey, p)
}

// PrincipalFrom returns the resolved principal for the request. The second
// return is false when no principal was resolved; callers must deny.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustPrincipal returns the resolved principal and panics if absent. Only for
// handlers behind the authentication middleware.
func MustPrincipal(c *gin.Context) Principal {
	p, ok := PrincipalFrom(c)
	if !ok {
		panic("authz: principal missing from context")
	}
	return p
}
