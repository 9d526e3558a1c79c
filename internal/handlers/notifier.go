package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/services"
	"github.com/taskpulse-dev/taskpulse/internal/utils"
)

type WebhookSender interface {
	Send(ctx context.Context, event services.TaskEvent) (services.DeliveryResult, error)
}

// TestNotifier pushes a synthetic event through the webhook synchronously so
// operators can check the endpoint configuration.
func TestNotifier(sender WebhookSender, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx *gin.Context) {
		identity, err := utils.GetCurrentIdentity(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		sample := models.Task{
			ID:            "test-connection",
			Name:          "Test Connection",
			AssigneeName:  "Test User",
			AssigneeEmail: "test@example.com",
			WorkspaceName: identity.WorkspaceName,
			Status:        "Pending",
		}

		result, err := sender.Send(ctx.Request.Context(), services.NewTaskEvent(sample, services.EventCreated, time.Now()))

		if err != nil {
			respondError(ctx, logger, err)
			return
		}

		message := "Notification sent"
		switch result.Status {
		case services.DeliverySkipped:
			message = "Notifier webhook is not configured"
		case services.DeliveryFailed:
			message = "Notification delivery failed"
		}

		ctx.JSON(http.StatusOK, gin.H{"message": message, "delivery": result})
	}
}
