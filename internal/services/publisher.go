package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"moschee-backend/internal/models"
)

// UpdateChannel is the Redis pub/sub channel for one assistant session.
func UpdateChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("assistant_updates:%s", sessionID.String())
}

// UpdatePublisher fans assistant events out to websocket hubs via Redis pub/sub.
type UpdatePublisher struct {
	redis  *redis.Client
	logger *slog.Logger
}

func NewUpdatePublisher(redisClient *redis.Client, logger *slog.Logger) *UpdatePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdatePublisher{redis: redisClient, logger: logger}
}

// PublishUpdate sends a WebSocket update via Redis pub/sub
func (p *UpdatePublisher) PublishUpdate(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to encode websocket update", "session_id", sessionID, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, UpdateChannel(sessionID), string(data)).Err(); err != nil {
		p.logger.Warn("failed to publish websocket update", "session_id", sessionID, "error", err)
	}
}
