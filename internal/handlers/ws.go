package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskpulse-dev/taskpulse/internal/types"
	"github.com/taskpulse-dev/taskpulse/internal/utils"
)

type EventStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, identity types.Identity)
}

// WebSocket streams task events for the caller's workspace.
func WebSocket(stream EventStream) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, err := utils.GetCurrentIdentity(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		stream.ServeWS(ctx.Writer, ctx.Request, identity)
	}
}
