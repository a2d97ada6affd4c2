package handler

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/analytics"
	infra "github.com/pot-code/study-tracker/internal/infrastructure"
	"github.com/pot-code/study-tracker/internal/infrastructure/pubsub"
)

// LiveHandler pushes weekly summaries over websocket
type LiveHandler struct {
	analyticsUseCase analytics.AnalyticsUseCase
	broker           *pubsub.Broker
	websocket        *infra.Websocket
	// RefreshInterval resend the summary periodically so the window follows the clock
	RefreshInterval time.Duration
}

func NewLiveHandler(AnalyticsUseCase analytics.AnalyticsUseCase, Broker *pubsub.Broker, Websocket *infra.Websocket) *LiveHandler {
	return &LiveHandler{
		analyticsUseCase: AnalyticsUseCase,
		broker:           Broker,
		websocket:        Websocket,
		RefreshInterval:  time.Minute,
	}
}

// HandleSummaryStream GET /ws/summary?userId=, every user when userId is empty
func (lh *LiveHandler) HandleSummaryStream(c echo.Context) error {
	userID := c.QueryParam("userId")
	return lh.websocket.Serve(c, func(ctx context.Context, conn *websocket.Conn) error {
		events, unsubscribe := lh.broker.Subscribe(userID)
		defer unsubscribe()

		ticker := time.NewTicker(lh.RefreshInterval)
		defer ticker.Stop()

		for {
			summary, err := lh.analyticsUseCase.WeeklySummary(ctx, userID)
			if err == nil {
				err = lh.websocket.WriteJSON(conn, summary)
			}
			if err != nil {
				if ctx.Err() != nil {
					// peer is gone
					return nil
				}
				return err
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			case <-events:
			}
		}
	})
}
