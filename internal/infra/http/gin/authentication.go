package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const (
	callerContextKey     = "rentavail.caller"
	principalHeader      = "X-Principal-ID"
	canManageBlockHeader = "X-Can-Manage-Blocks"
)

// caller is the identity resolved by the gateway in front of this service.
// Permissions arrive already checked.
type caller struct {
	ID            string
	CanManage     bool
	Authenticated bool
}

// CallerMiddleware reads the gateway-supplied identity headers.
func CallerMiddleware(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(principalHeader))
	canManage, _ := strconv.ParseBool(strings.TrimSpace(c.GetHeader(canManageBlockHeader)))
	c.Set(callerContextKey, caller{ID: id, CanManage: canManage, Authenticated: id != ""})
	c.Next()
}

func currentCaller(c *gin.Context) caller {
	val, exists := c.Get(callerContextKey)
	if !exists {
		return caller{}
	}
	p, _ := val.(caller)
	return p
}

func requireCaller(c *gin.Context) (caller, bool) {
	p := currentCaller(c)
	if !p.Authenticated {
		c.Set("error_code", "unauthenticated")
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Code: "unauthenticated", Message: principalHeader + " header required"})
		return caller{}, false
	}
	return p, true
}
