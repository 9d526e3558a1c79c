package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/taskpulse-dev/taskpulse/internal/types"
)

func SetCurrentIdentity(ctx *gin.Context, identity types.Identity) {
	ctx.Set(types.ContextIdentityKey, identity)
}

// GetCurrentIdentity returns the identity placed on the context by the auth
// middleware.
func GetCurrentIdentity(ctx *gin.Context) (types.Identity, error) {
	value, exists := ctx.Get(types.ContextIdentityKey)

	if !exists {
		return types.Identity{}, fmt.Errorf("identity not set on context")
	}

	identity, ok := value.(types.Identity)

	if !ok {
		return types.Identity{}, fmt.Errorf("unexpected identity type %T in context", value)
	}

	return identity, nil
}
