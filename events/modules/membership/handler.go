package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/devexchange/orgs-backend/v1/internal/notify"
	"github.com/devexchange/orgs-backend/v1/model"
	"go.uber.org/zap"
)

// Deliverer sends a rendered notification, normally the email sender
type Deliverer interface {
	SendMessages(ctx context.Context, event string, recipients []model.User, data model.MessageData) error
}

// Handler consumes MembershipEvents and delivers them with retry
type Handler struct {
	Deliverer  Deliverer
	Logger     *zap.Logger
	MaxElapsed time.Duration
}

// NewHandler creates a Handler that retries delivery for up to two minutes
func NewHandler(d Deliverer, logger *zap.Logger) *Handler {
	return &Handler{Deliverer: d, Logger: logger, MaxElapsed: 2 * time.Minute}
}

// Handle decodes msg and delivers it. Malformed events are rejected without retry.
func (h *Handler) Handle(ctx context.Context, msg []byte) error {
	var event MembershipEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal MembershipEvent: %w", err)
	}

	if event.Notification == "" || len(event.Recipients) == 0 {
		return fmt.Errorf("invalid event %s: missing notification or recipients", event.EventID)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = h.MaxElapsed

	err := backoff.RetryNotify(func() error {
		err := h.Deliverer.SendMessages(ctx, event.Notification, event.Recipients, event.Data)
		if errors.Is(err, notify.ErrRender) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		h.Logger.Warn("retrying membership notification",
			zap.String("event_id", event.EventID), zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("delivery of %s failed: %w", event.EventID, err)
	}

	h.Logger.Info("membership notification delivered",
		zap.String("event_id", event.EventID), zap.String("notification", event.Notification),
		zap.Int("recipients", len(event.Recipients)))
	return nil
}
